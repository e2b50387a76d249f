package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// Transport is how the overlay reaches the coordinator.
type Transport interface {
	// Request sends msgType and returns the raw response, nil if none.
	Request(ctx context.Context, msgType string, payload interface{}) (json.RawMessage, error)
	// Next blocks until the coordinator pushes a message.
	Next(ctx context.Context) (Envelope, error)
	Close() error
}

// RequestTabData asks for the switcher candidates.
func RequestTabData(ctx context.Context, t Transport) (TabData, error) {
	raw, err := t.Request(ctx, TypeRequestTabData, nil)
	if err != nil {
		return TabData{}, err
	}
	var data TabData
	if len(raw) == 0 {
		return data, fmt.Errorf("router: empty tab data response")
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return TabData{}, fmt.Errorf("router: decode tab data: %w", err)
	}
	return data, nil
}

// Activate asks the coordinator to bring a tab to the front.
func Activate(ctx context.Context, t Transport, id tab.ID) error {
	_, err := t.Request(ctx, TypeActivateTab, ActivateTab{ID: id})
	return err
}

// Local connects an in-process overlay to a coordinator.
type Local struct {
	coord *Coordinator
	hub   *Hub
}

func NewLocal(coord *Coordinator, hub *Hub) *Local {
	return &Local{coord: coord, hub: hub}
}

func (l *Local) Request(ctx context.Context, msgType string, payload interface{}) (json.RawMessage, error) {
	env, err := NewEnvelope(msgType, payload)
	if err != nil {
		return nil, err
	}
	resp, err := l.coord.Handle(ctx, env)
	if err != nil || resp == nil {
		return nil, err
	}
	return json.Marshal(resp)
}

func (l *Local) Next(ctx context.Context) (Envelope, error) {
	return l.hub.Next(ctx)
}

func (l *Local) Close() error {
	l.hub.Disconnect()
	return nil
}

// Client is the HTTP transport.
type Client struct {
	base string
	http *http.Client
	wait time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
		wait: defaultWait,
	}
}

func (c *Client) Request(ctx context.Context, msgType string, payload interface{}) (json.RawMessage, error) {
	env, err := NewEnvelope(msgType, payload)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("router: %s: %w", msgType, err)
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func (c *Client) Next(ctx context.Context) (Envelope, error) {
	url := fmt.Sprintf("%s/v1/overlay/events?wait=%s", c.base, c.wait)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Envelope{}, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return Envelope{}, fmt.Errorf("router: poll: %w", err)
		}
		raw, err := readResponse(resp)
		resp.Body.Close()
		if err != nil {
			return Envelope{}, err
		}
		if len(raw) == 0 {
			if ctx.Err() != nil {
				return Envelope{}, ctx.Err()
			}
			continue
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return Envelope{}, fmt.Errorf("router: decode push: %w", err)
		}
		return env, nil
	}
}

func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/v1/overlay/events", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func readResponse(resp *http.Response) (json.RawMessage, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			return nil, fmt.Errorf("router: %s", body.Error)
		}
		return nil, fmt.Errorf("router: unexpected status %d", resp.StatusCode)
	}
	return raw, nil
}
