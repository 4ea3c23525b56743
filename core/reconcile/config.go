package reconcile

import "time"

// Config controls how the Reconciler runs its passes.
type Config struct {
	// Workers is the number of record writes applied concurrently within a pass.
	Workers int `mapstructure:"workers" default:"1"`
	// FetchAttempts bounds the number of fetch attempts per pass.
	FetchAttempts int `mapstructure:"fetch_attempts" default:"3"`
	// FetchBackoff is the wait before the second fetch attempt; it doubles after each retry.
	FetchBackoff time.Duration `mapstructure:"fetch_backoff" default:"500ms"`
	// MaxFetchBackoff caps the wait between fetch attempts.
	MaxFetchBackoff time.Duration `mapstructure:"max_fetch_backoff" default:"10s"`
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.FetchAttempts <= 0 {
		c.FetchAttempts = 1
	}
	if c.FetchBackoff < 0 {
		c.FetchBackoff = 0
	}
	if c.MaxFetchBackoff <= 0 {
		c.MaxFetchBackoff = 10 * time.Second
	}
	return c
}
