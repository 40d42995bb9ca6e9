package browser

import "time"

// Config holds configuration for the automated browser.
type Config struct {
	// Bin is the Chrome/Chromium executable. Empty lets the launcher find or download one.
	Bin string `mapstructure:"bin" default:""`
	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL string `mapstructure:"control_url" default:""`
	// Headless hides the window. The operator must log in, so it is off by default.
	Headless bool `mapstructure:"headless" default:"false"`
	// TimeoutSeconds bounds every wait for an expected page state.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"20"`
}

// Timeout returns TimeoutSeconds as a duration, at least one second.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
