package types

import (
	"time"
)

// RequestConfig bounds the requests sent down provider channels.
type RequestConfig struct {
	// RequestQueueSize is the buffer of each provider channel.
	RequestQueueSize int
	// RequestTimeout is how long a request may wait for its response before
	// the sweeper fails it.
	RequestTimeout time.Duration
	// ClearInterval is the sweeper period.
	ClearInterval time.Duration
}

func DefaultConfig() *RequestConfig {
	return &RequestConfig{
		RequestQueueSize: 30,
		RequestTimeout:   time.Minute * 5,
		ClearInterval:    time.Minute,
	}
}

// WithDefaults returns a copy of c with unset or negative fields taken from
// DefaultConfig. A nil c yields DefaultConfig.
func (c *RequestConfig) WithDefaults() *RequestConfig {
	def := DefaultConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.RequestQueueSize <= 0 {
		out.RequestQueueSize = def.RequestQueueSize
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = def.RequestTimeout
	}
	if out.ClearInterval <= 0 {
		out.ClearInterval = def.ClearInterval
	}
	return &out
}
