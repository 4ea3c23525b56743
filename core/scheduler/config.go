package scheduler

import "time"

// Config controls periodic synchronization.
type Config struct {
	// Interval between runs. Zero disables the scheduler.
	Interval time.Duration `mapstructure:"interval" default:"0s"`
	// RunOnStart triggers one run as soon as the scheduler starts.
	RunOnStart bool `mapstructure:"run_on_start" default:"false"`
}

// Enabled reports whether periodic runs are configured.
func (c Config) Enabled() bool {
	return c.Interval > 0
}
