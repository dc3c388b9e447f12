package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/utils"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; LinkMind/1.0; +https://linkmind.app)"
	maxBodySize = 128 * 1024
)

// Metadata is the snapshot of a page taken when a bookmark is created.
type Metadata struct {
	Title       string
	Description string
	Favicon     string
}

// Fetcher retrieves title, description and favicon for a URL. Fetching is
// best effort: on any failure the caller gets a usable fallback (title =
// the URL itself) instead of an error, because a dead page should not
// block saving its bookmark.
type Fetcher struct {
	client *http.Client
	logger logger.Logger
}

func NewFetcher(timeout time.Duration, log logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Fetch returns the page metadata for rawURL, falling back field by field
// when the page is unreachable or missing tags.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Metadata {
	meta := Metadata{Title: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		f.logger.Warn("unparseable bookmark url", logger.String("url", rawURL), logger.Error(err))
		return meta
	}
	baseURL := parsed.Scheme + "://" + parsed.Host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return meta
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("failed to fetch metadata", logger.String("url", rawURL), logger.Error(err))
		return meta
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("metadata fetch returned non-OK status",
			logger.String("url", rawURL),
			logger.Int("status", resp.StatusCode))
		return meta
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		f.logger.Warn("failed to parse page html", logger.String("url", rawURL), logger.Error(err))
		return meta
	}

	extracted := extract(doc)

	// og:title wins over <title>; the plain description meta tag wins
	// over og:description.
	if extracted.ogTitle != "" {
		meta.Title = extracted.ogTitle
	} else if extracted.title != "" {
		meta.Title = extracted.title
	}

	if extracted.description != "" {
		meta.Description = truncate(extracted.description, 500)
	} else if extracted.ogDescription != "" {
		meta.Description = truncate(extracted.ogDescription, 500)
	}

	if extracted.favicon != "" {
		meta.Favicon = resolveFavicon(extracted.favicon, parsed, baseURL)
	} else {
		meta.Favicon = baseURL + "/favicon.ico"
	}

	return meta
}

type extracted struct {
	title         string
	ogTitle       string
	description   string
	ogDescription string
	favicon       string
}

// extract walks the parsed document collecting title, meta and icon tags.
func extract(doc *html.Node) extracted {
	var e extracted

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if e.title == "" && n.FirstChild != nil {
					e.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var name, property, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = attr.Val
					case "property":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}
				switch {
				case name == "description" && e.description == "":
					e.description = strings.TrimSpace(content)
				case property == "og:title" && e.ogTitle == "":
					e.ogTitle = strings.TrimSpace(content)
				case property == "og:description" && e.ogDescription == "":
					e.ogDescription = strings.TrimSpace(content)
				}
			case "link":
				var rel, href string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "rel":
						rel = strings.ToLower(attr.Val)
					case "href":
						href = attr.Val
					}
				}
				if (rel == "icon" || rel == "shortcut icon") && e.favicon == "" {
					e.favicon = strings.TrimSpace(href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return e
}

// resolveFavicon turns a possibly relative favicon href into an absolute URL.
func resolveFavicon(href string, page *url.URL, baseURL string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return page.Scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	default:
		ref, err := url.Parse(href)
		if err != nil {
			return fmt.Sprintf("%s/favicon.ico", baseURL)
		}
		return page.ResolveReference(ref).String()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
