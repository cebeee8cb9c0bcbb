package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"planboard/internal/event"
	"planboard/internal/model"
)

// ErrRejected marks a server refusal of one operation. It is recoverable:
// the optimistic row rolls back and the user may retry.
var ErrRejected = errors.New("operation rejected by server")

// Client issues the REST side of the sync protocol. The push side is the
// websocket in socket.go.
type Client struct {
	BaseURL  string
	Token    string
	ClientID string
	HTTPC    *http.Client
}

func NewClient(baseURL, token, clientID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Token:    token,
		ClientID: clientID,
		HTTPC:    http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.ClientID != "" {
		req.Header.Set("X-Client-ID", c.ClientID)
	}

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrRejected, body.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// createItem posts a creation and returns the confirmed row as (id, patch).
func (c *Client) createItem(ctx context.Context, kind model.Kind, path string, body any) (string, any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return "", nil, err
	}
	return decodeItem(kind, raw)
}

// updateItem patches a row and returns the server's resulting view of it.
func (c *Client) updateItem(ctx context.Context, kind model.Kind, path string, body any) (string, any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, body, &raw); err != nil {
		return "", nil, err
	}
	return decodeItem(kind, raw)
}

// moveItem posts a move and returns the server's resulting view of the row.
func (c *Client) moveItem(ctx context.Context, kind model.Kind, path string, body any) (string, any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return "", nil, err
	}
	return decodeItem(kind, raw)
}

func (c *Client) deleteItem(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AuthResponse is the login/register reply.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates against the server and returns the token to construct
// a Client with.
func Login(ctx context.Context, baseURL, email, password string) (AuthResponse, error) {
	c := &Client{BaseURL: baseURL, HTTPC: http.DefaultClient}
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Snapshot fetches the authoritative full state of one board.
func (c *Client) Snapshot(ctx context.Context, boardID string) (event.Snapshot, error) {
	var snap event.Snapshot
	err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/snapshot", nil, &snap)
	return snap, err
}
