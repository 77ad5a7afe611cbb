package protoservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

var log = logging.Logger("protoservice")

const DefaultTimeout = 30 * time.Second

// Client talks to the proto encoding service, which turns JSON transaction
// parts into the ledger's binary format.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TxProto builds the unsigned auth info and body bytes of a transaction.
func (c *Client) TxProto(ctx context.Context, req *types.TxProtoRequest) (*types.TxProto, error) {
	body, err := c.post(ctx, "/proto", req)
	if err != nil {
		return nil, err
	}
	var proto types.TxProto
	if err := json.Unmarshal(body, &proto); err != nil {
		return nil, errors.Wrap(err, "decode proto response")
	}
	return &proto, nil
}

// TxProtoBytes assembles the signed transaction and returns it as the opaque
// string the wallet broadcasts.
func (c *Client) TxProtoBytes(ctx context.Context, req *types.TxProtoBytesRequest) (string, error) {
	body, err := c.post(ctx, "/proto/bytes", req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s request", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "new %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	stats.Record(ctx, metrics.EncodingCall.M(metrics.SinceInMilliseconds(start)))
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", path)
	}
	if resp.StatusCode != http.StatusOK {
		serr := &types.EncodingServiceError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		log.Warnf("encoding service %s returned %d: %s", path, resp.StatusCode, serr.Message)
		return nil, serr
	}
	return body, nil
}

type errorBody struct {
	Message json.RawMessage `json:"message"`
}

// errorMessage extracts message from {"message": string | string[]}, joining
// lists with newlines. A body without that shape is returned as text.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Message) > 0 {
		var single string
		if err := json.Unmarshal(eb.Message, &single); err == nil {
			return single
		}
		var list []string
		if err := json.Unmarshal(eb.Message, &list); err == nil {
			return strings.Join(list, "\n")
		}
	}
	return strings.TrimSpace(string(body))
}
