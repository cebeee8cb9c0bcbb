package sync

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"planboard/internal/event"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// ConnectBoard keeps the push channel for one board alive until the context
// is cancelled. Every (re)connection rehydrates the store from a fresh
// snapshot before pushes stream in, so a missed notification can never leave
// a stale or duplicated row behind.
func (e *Engine) ConnectBoard(ctx context.Context, boardID string) error {
	backoff := reconnectBase
	for {
		err := e.syncOnce(ctx, boardID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("sync: connection to board %s lost: %v (retrying in %s)", boardID, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (e *Engine) syncOnce(ctx context.Context, boardID string) error {
	header := http.Header{}
	if e.api.Token != "" {
		header.Set("Authorization", "Bearer "+e.api.Token)
	}
	header.Set("X-Client-ID", e.api.ClientID)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, e.wsURL(boardID), header)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Socket first, snapshot second: anything mutated while the snapshot
	// was being served is queued on the socket and replays after the
	// replace as idempotent upserts.
	snap, err := e.api.Snapshot(ctx, boardID)
	if err != nil {
		return err
	}
	e.Enqueue(event.ConnectionReset{})
	e.Enqueue(event.FullStateReplace{Snapshot: snap})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg pushMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("sync: malformed push frame: %v", err)
			continue
		}
		e.enqueuePush(msg)
	}
}

func (e *Engine) enqueuePush(msg pushMessage) {
	kind, action, err := splitType(msg.Type)
	if err != nil {
		log.Printf("sync: %v", err)
		return
	}
	id, patch, err := decodeItem(kind, msg.Item)
	if err != nil {
		log.Printf("sync: bad %s payload: %v", msg.Type, err)
		return
	}
	switch action {
	case actionDelete:
		e.Enqueue(event.PushDelete{Entity: kind, ID: id})
	default:
		e.Enqueue(event.PushUpsert{Entity: kind, ID: id, Patch: patch})
	}
}

func (e *Engine) wsURL(boardID string) string {
	url := e.api.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/ws/boards/" + boardID
}
