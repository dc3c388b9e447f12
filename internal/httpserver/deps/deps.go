package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/metadata"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/reminder"
	redisstore "github.com/linkmind/linkmind/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Store       *redisstore.Store    // bookmark / device-token document store
	RedisClient *redis.Client        // raw client, used by readiness checks
	Controller  *reminder.Controller // reminder lifecycle + fire handling
	Sweeper     *reminder.Sweeper    // due-reminder sweep
	Notifier    notify.Sender        // push delivery collaborator
	Metadata    *metadata.Fetcher    // URL metadata snapshot fetcher

	AuthSecret      []byte   // verifies end-user bearer tokens
	SchedulerSecret []byte   // verifies scheduler callback credentials
	CallbackBaseURL string   // expected audience of callback credentials
	AllowedCIDRS    []string // IPs allowed to hit internal endpoints (sweep trigger)
	TrustProxy      bool     // true if running behind a trusted reverse proxy
}
