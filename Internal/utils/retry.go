package utils

import (
	"log"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// RetryWithBackoff runs fn up to MaxAttempts times, doubling the delay
// between attempts. Returns the last error if every attempt fails.
func RetryWithBackoff(fn func() error, cfg RetryConfig) error {
	var err error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if attempt < cfg.MaxAttempts {
			log.Printf("⚠️  Tentativa %d/%d falhou: %v (retry em %v)", attempt, cfg.MaxAttempts, err, delay)
			time.Sleep(delay)
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return err
}
