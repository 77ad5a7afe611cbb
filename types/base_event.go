package types

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/modern-go/reflect2"
)

var log = logging.Logger("gateway_stream")

var (
	ErrCloseChannel   = fmt.Errorf("recover send once")
	ErrRequestTimeout = fmt.Errorf("timer clean this request due to exceed wait time")
)

// BaseEventStream correlates requests pushed down provider channels with the
// responses the providers send back.
type BaseEventStream struct {
	reqLk     sync.RWMutex
	idRequest map[uuid.UUID]*RequestEvent
	cfg       *RequestConfig
}

func NewBaseEventStream(ctx context.Context, cfg *RequestConfig) *BaseEventStream {
	baseEventStream := &BaseEventStream{
		reqLk:     sync.RWMutex{},
		idRequest: make(map[uuid.UUID]*RequestEvent),
		cfg:       cfg.WithDefaults(),
	}
	go baseEventStream.cleanRequests(ctx)
	return baseEventStream
}

// SendRequest sends method with payload to channel and decodes the response
// payload into result, which may be nil.
func (e *BaseEventStream) SendRequest(ctx context.Context, channel *ChannelInfo, method string, payload []byte, result interface{}) error {
	if channel == nil {
		return fmt.Errorf("send request must have channel")
	}

	resp, err := e.sendOnce(ctx, channel, method, payload)
	if err != nil {
		return err
	}

	if len(resp.Error) > 0 || len(resp.ErrorKind) > 0 {
		return ErrorFromKind(resp.ErrorKind, resp.Error)
	}
	if !reflect2.IsNil(result) && len(resp.Payload) > 0 {
		return json.Unmarshal(resp.Payload, result)
	}
	return nil
}

func (e *BaseEventStream) sendOnce(ctx context.Context, channel *ChannelInfo, method string, payload []byte) (response *ResponseEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrCloseChannel
		}
	}()

	id := uuid.New()
	resultCh := make(chan *ResponseEvent, 1)
	request := &RequestEvent{
		ID:         id,
		Method:     method,
		Payload:    payload,
		CreateTime: time.Now(),
		Result:     resultCh,
	}
	e.reqLk.Lock()
	e.idRequest[id] = request
	e.reqLk.Unlock()
	defer e.forget(id)

	select {
	case channel.OutBound <- request: //NOTICE this may panic on a closed channel, recover turns it into ErrCloseChannel
		log.Debugf("send request %s to %s", method, channel.IP)
	case <-channel.Done:
		return nil, fmt.Errorf("channel %s closed: %w", channel.ChannelID, ErrNotInstalled)
	case <-ctx.Done():
		return nil, fmt.Errorf("send request cancel by context %w", ctx.Err())
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("cancel by context %w", ctx.Err())
	case <-channel.Done:
		return nil, fmt.Errorf("channel %s closed: %w", channel.ChannelID, ErrNotInstalled)
	case respEvent := <-resultCh:
		return respEvent, nil
	}
}

func (e *BaseEventStream) forget(id uuid.UUID) {
	e.reqLk.Lock()
	delete(e.idRequest, id)
	e.reqLk.Unlock()
}

func (e *BaseEventStream) cleanRequests(ctx context.Context) {
	tm := time.NewTicker(e.cfg.ClearInterval)
	defer tm.Stop()
	for {
		select {
		case <-tm.C:
			e.reqLk.Lock()
			for id, request := range e.idRequest {
				if time.Since(request.CreateTime) > e.cfg.RequestTimeout {
					delete(e.idRequest, id)
					//avoid block this channel, maybe client request come as request timeout by chance
					select {
					case request.Result <- &ResponseEvent{
						ID:    id,
						Error: fmt.Sprintf("%s create time %s method %s", ErrRequestTimeout, request.CreateTime, request.Method),
					}:
					default:
					}
				}
			}
			e.reqLk.Unlock()
		case <-ctx.Done():
			log.Warnf("return clean request")
			return
		}
	}
}

// ResponseEvent hands resp to the request waiting for it.
func (e *BaseEventStream) ResponseEvent(ctx context.Context, resp *ResponseEvent) error {
	e.reqLk.Lock()
	event, ok := e.idRequest[resp.ID]
	if ok {
		delete(e.idRequest, resp.ID)
	}
	e.reqLk.Unlock()
	if !ok {
		return fmt.Errorf("request id %s not exit", resp.ID.String())
	}

	select {
	case event.Result <- resp:
	default:
		log.Warnf("drop duplicate response for %s", resp.ID)
	}
	return nil
}

// PendingRequests counts requests still waiting for a response.
func (e *BaseEventStream) PendingRequests() int {
	e.reqLk.RLock()
	defer e.reqLk.RUnlock()
	return len(e.idRequest)
}
