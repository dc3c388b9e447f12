package imports

// ImportFile is the top-level structure of a bookmark import file.
type ImportFile struct {
	Users []ImportUser `yaml:"users"`
}

// ImportUser groups imported bookmarks under their owner.
type ImportUser struct {
	ID        string           `yaml:"id"`
	Bookmarks []ImportBookmark `yaml:"bookmarks"`
}

// ImportBookmark is one bookmark entry. Only url is required; interval
// falls back to the default when omitted.
type ImportBookmark struct {
	URL              string `yaml:"url"`
	Title            string `yaml:"title,omitempty"`
	Description      string `yaml:"description,omitempty"`
	ReminderInterval string `yaml:"reminder_interval,omitempty"`
}
