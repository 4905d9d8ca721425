// Package relay is the consumer side of the relay transport contract:
// submit a signed envelope, subscribe to a filtered stream of inbound
// envelopes via HTTP long polling. The relay itself is a separate
// service; this client only speaks its JSON interface.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agentmesh/go-sdk/internal/config"
	"agentmesh/go-sdk/pkg/envelope"
)

var ErrRelayUnavailable = errors.New("relay: request failed")

// SubmitResult is the relay's answer to a submission. A rejection is
// reported without a reason; the relay does not explain itself to
// senders.
type SubmitResult struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Filter narrows a subscription. Zero values mean "any".
type Filter struct {
	Since     string
	Recipient string
	Sender    string
	Type      envelope.MessageType
	Thread    string
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.Since != "" {
		q.Set("since", f.Since)
	}
	if f.Recipient != "" {
		q.Set("recipient", f.Recipient)
	}
	if f.Sender != "" {
		q.Set("sender", f.Sender)
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.Thread != "" {
		q.Set("thread", f.Thread)
	}
	return q
}

// Transport is what agent runtimes program against; Client is the HTTP
// implementation, and tests substitute in-memory fakes.
type Transport interface {
	Submit(ctx context.Context, env envelope.Envelope) (SubmitResult, error)
	Subscribe(ctx context.Context, f Filter) (<-chan []envelope.Envelope, error)
}

type Client struct {
	baseURL      string
	http         *http.Client
	pollWait     time.Duration
	pollInterval time.Duration
	log          *slog.Logger
}

func NewClient(cfg config.RelayConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         &http.Client{Timeout: cfg.RequestTimeout},
		pollWait:     cfg.PollWait,
		pollInterval: cfg.PollInterval,
		log:          log,
	}
}

// Submit posts a signed envelope to the relay.
func (c *Client) Submit(ctx context.Context, env envelope.Envelope) (SubmitResult, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("relay: envelope encode failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/envelopes", bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return SubmitResult{}, fmt.Errorf("%w: status %d", ErrRelayUnavailable, resp.StatusCode)
	}
	var result SubmitResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: bad response body: %v", ErrRelayUnavailable, err)
	}
	return result, nil
}

// Subscribe long-polls the relay and delivers envelope batches until
// ctx is done. The channel is closed on exit. Poll errors back off for
// one poll interval and the loop continues; transient relay outages do
// not kill a subscription.
func (c *Client) Subscribe(ctx context.Context, f Filter) (<-chan []envelope.Envelope, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: no base url", ErrRelayUnavailable)
	}
	out := make(chan []envelope.Envelope)
	go c.pollLoop(ctx, f, out)
	return out, nil
}

func (c *Client) pollLoop(ctx context.Context, f Filter, out chan<- []envelope.Envelope) {
	defer close(out)
	since := f.Since
	for {
		if ctx.Err() != nil {
			return
		}
		batch, err := c.poll(ctx, f, since)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("relay poll failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pollInterval):
			}
			continue
		}
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pollInterval):
			}
			continue
		}
		since = batch[len(batch)-1].TS
		select {
		case <-ctx.Done():
			return
		case out <- batch:
		}
	}
}

func (c *Client) poll(ctx context.Context, f Filter, since string) ([]envelope.Envelope, error) {
	q := f.query()
	if since != "" {
		q.Set("since", since)
	}
	if c.pollWait > 0 {
		q.Set("wait", fmt.Sprintf("%d", int(c.pollWait.Seconds())))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/envelopes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRelayUnavailable, resp.StatusCode)
	}
	var batch []envelope.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: bad batch body: %v", ErrRelayUnavailable, err)
	}
	return batch, nil
}
