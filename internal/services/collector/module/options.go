package module

import (
	"time"

	"github.com/iliebabcenco/big-collector/internal/platform/config"
	"github.com/iliebabcenco/big-collector/internal/services/collector/sources"
)

// Settings carries collector configuration read from the environment
type Settings struct {
	Sources sources.Options

	HTTPTimeout   time.Duration
	HTTPUserAgent string
}

// SettingsFromConfig reads collector settings under the COLLECTOR_ prefix.
// Every value has a working default so a bare environment still runs
func SettingsFromConfig(cfg config.Conf) Settings {
	c := cfg.Prefix("COLLECTOR_")
	return Settings{
		Sources: sources.Options{
			AppStoreBaseURL:  c.MayString("APPSTORE_BASE_URL", ""),
			GitHubBaseURL:    c.MayString("GITHUB_BASE_URL", ""),
			GitHubToken:      c.MayString("GITHUB_TOKEN", ""),
			HNBaseURL:        c.MayString("HN_BASE_URL", ""),
			RedditBaseURL:    c.MayString("REDDIT_BASE_URL", ""),
			ProductHuntURL:   c.MayString("PRODUCTHUNT_BASE_URL", ""),
			ProductHuntToken: c.MayString("PRODUCTHUNT_TOKEN", ""),
			UpworkFeedURL:    c.MayString("UPWORK_FEED_URL", ""),
		}.Defaults(),
		HTTPTimeout:   c.MayDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPUserAgent: c.MayString("HTTP_USER_AGENT", ""),
	}
}
