package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestEvent is a call sent down a provider connection.
type RequestEvent struct {
	ID         uuid.UUID
	Method     string
	Payload    []byte
	CreateTime time.Time           `json:"-"`
	Result     chan *ResponseEvent `json:"-"`
}

// ResponseEvent answers a RequestEvent. ErrorKind carries the error taxonomy
// name so the caller can rebuild a matching error.
type ResponseEvent struct {
	ID        uuid.UUID
	Payload   []byte
	Error     string
	ErrorKind string
}

type ChannelInfo struct {
	ChannelID  uuid.UUID
	IP         string
	OutBound   chan *RequestEvent
	CreateTime time.Time
	// Done is closed when the provider connection goes away.
	Done <-chan struct{}
}

func NewChannelInfo(ctx context.Context, ip string, sendEvents chan *RequestEvent) *ChannelInfo {
	return &ChannelInfo{
		ChannelID:  uuid.New(),
		OutBound:   sendEvents,
		IP:         ip,
		CreateTime: time.Now(),
		Done:       ctx.Done(),
	}
}
