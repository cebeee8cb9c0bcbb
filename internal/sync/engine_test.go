package sync_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	stdsync "sync"
	"testing"
	"time"

	"planboard/internal/event"
	"planboard/internal/model"
	"planboard/internal/store"
	"planboard/internal/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

const waitTimeout = 3 * time.Second

// harness runs an engine against a test server. Store state is only
// inspected from OnChange (queue goroutine) or after Stop, so tests stay
// race-free.
type harness struct {
	engine *sync.Engine
	store  *store.Store
	cancel context.CancelFunc
	done   chan struct{}
}

func startEngine(t *testing.T, srvURL string, onChange func(*store.Store)) *harness {
	st := store.New()
	e := sync.NewEngine(st, sync.NewClient(srvURL, "test-token", "client-1"))
	if onChange != nil {
		e.OnChange = func() { onChange(st) }
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &harness{engine: e, store: st, cancel: cancel, done: done}
}

// Stop halts the queue so the store can be read directly.
func (h *harness) Stop() {
	h.cancel()
	<-h.done
}

func await(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func signal(once *stdsync.Once, ch chan struct{}) {
	once.Do(func() { close(ch) })
}

func TestCreateList_ConfirmSwapsProvisionalID(t *testing.T) {
	// Arrange: the server confirms list creations under its own id
	mux := http.NewServeMux()
	mux.HandleFunc("/lists", func(w http.ResponseWriter, r *http.Request) {
		var patch model.ListPatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.List{
			ID:       "srv-list-1",
			BoardID:  *patch.BoardID,
			Position: *patch.Position,
			Name:     *patch.Name,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var seedOnce, confirmOnce stdsync.Once
	seeded := make(chan struct{})
	confirmed := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.Board("b1"); ok {
			signal(&seedOnce, seeded)
		}
		if l, ok := st.List("srv-list-1"); ok && l.IsPersisted {
			signal(&confirmOnce, confirmed)
		}
	})

	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	await(t, seeded, "board seed")

	// Act
	localID := h.engine.CreateList(context.Background(), "b1", model.ListPatch{Name: strp("Doing")})

	// Assert
	assert.True(t, model.IsLocalID(localID))
	await(t, confirmed, "creation confirm")
	h.Stop()

	_, stillProvisional := h.store.List(localID)
	assert.False(t, stillProvisional)
	confirmedList, ok := h.store.List("srv-list-1")
	require.True(t, ok)
	assert.Equal(t, "Doing", confirmedList.Name)
	assert.True(t, confirmedList.IsPersisted)
}

func TestCreateList_RejectRollsBackOptimisticRow(t *testing.T) {
	// Arrange: the server refuses the creation
	mux := http.NewServeMux()
	mux.HandleFunc("/lists", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "You don't have permission to edit this board"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// sawOptimistic is only touched from the queue goroutine via OnChange.
	var sawOptimistic bool
	var seedOnce, rollbackOnce stdsync.Once
	seeded := make(chan struct{})
	rolledBack := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.Board("b1"); ok {
			signal(&seedOnce, seeded)
		}
		if len(st.ListsOfBoard("b1")) > 0 {
			sawOptimistic = true
		} else if sawOptimistic {
			signal(&rollbackOnce, rolledBack)
		}
	})

	rejections := make(chan sync.Rejection, 1)
	h.engine.OnReject = func(r sync.Rejection) { rejections <- r }

	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	await(t, seeded, "board seed")

	// Act
	localID := h.engine.CreateList(context.Background(), "b1", model.ListPatch{Name: strp("Doing")})

	// Assert
	await(t, rolledBack, "rollback")
	select {
	case rej := <-rejections:
		assert.Equal(t, model.KindList, rej.Entity)
		assert.Equal(t, localID, rej.ID)
		assert.Contains(t, rej.Reason, "permission")
	case <-time.After(waitTimeout):
		t.Fatal("no rejection surfaced")
	}

	h.Stop()
	_, exists := h.store.List(localID)
	assert.False(t, exists)
	assert.Empty(t, h.store.ListsOfBoard("b1"))
}

func TestMoveCard_SendsAllocatedPosition(t *testing.T) {
	// Arrange
	type moveBody struct {
		ParentID string  `json:"parentId"`
		Position float64 `json:"position"`
	}
	moves := make(chan moveBody, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/cards/c1/move", func(w http.ResponseWriter, r *http.Request) {
		var body moveBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		moves <- body
		json.NewEncoder(w).Encode(model.Card{
			ID:       "c1",
			BoardID:  "b1",
			ListID:   body.ParentID,
			Position: body.Position,
			Name:     "Card",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var seedOnce, movedOnce stdsync.Once
	seeded := make(chan struct{})
	moved := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.Card("c1"); ok {
			signal(&seedOnce, seeded)
		}
		if c, ok := st.Card("c1"); ok && c.ListID == "l2" {
			signal(&movedOnce, moved)
		}
	})

	pos := 65536.0
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindList, ID: "l1", Patch: model.ListPatch{BoardID: strp("b1"), Name: strp("A"), Position: &pos}})
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindList, ID: "l2", Patch: model.ListPatch{BoardID: strp("b1"), Name: strp("B"), Position: &pos}})
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{ListID: strp("l1"), Name: strp("Card"), Position: &pos}})
	await(t, seeded, "card seed")

	// Act: move the card into the empty list
	h.engine.MoveCard(context.Background(), "c1", "l2", 0)

	// Assert: the server sees the destination and the allocated position
	select {
	case body := <-moves:
		assert.Equal(t, "l2", body.ParentID)
		assert.Equal(t, 65536.0, body.Position)
	case <-time.After(waitTimeout):
		t.Fatal("move request never reached the server")
	}
	await(t, moved, "move applied")

	h.Stop()
	card, ok := h.store.Card("c1")
	require.True(t, ok)
	assert.Equal(t, "l2", card.ListID)
}

func TestCreateCard_WaitsForProvisionalListConfirm(t *testing.T) {
	// Arrange: the list confirmation is held open while a card is created
	// under the still-provisional list
	releaseList := make(chan struct{})
	cardParents := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/lists", func(w http.ResponseWriter, r *http.Request) {
		var patch model.ListPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			return
		}
		<-releaseList
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.List{
			ID:       "srv-9",
			BoardID:  *patch.BoardID,
			Position: *patch.Position,
			Name:     *patch.Name,
		})
	})
	mux.HandleFunc("/cards", func(w http.ResponseWriter, r *http.Request) {
		var patch model.CardPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			return
		}
		cardParents <- *patch.ListID
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Card{
			ID:       "srv-card-1",
			BoardID:  "b1",
			ListID:   *patch.ListID,
			Position: *patch.Position,
			Name:     *patch.Name,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var seedOnce, confirmOnce stdsync.Once
	seeded := make(chan struct{})
	confirmed := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.Board("b1"); ok {
			signal(&seedOnce, seeded)
		}
		if c, ok := st.Card("srv-card-1"); ok && c.ListID == "srv-9" {
			signal(&confirmOnce, confirmed)
		}
	})

	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	await(t, seeded, "board seed")

	// Act
	localList := h.engine.CreateList(context.Background(), "b1", model.ListPatch{Name: strp("Backlog")})
	localCard := h.engine.CreateCard(context.Background(), localList, model.CardPatch{Name: strp("Fix bug")})

	// Assert: the card creation is held while its list id is provisional
	select {
	case parent := <-cardParents:
		t.Fatalf("card creation left before the list confirmed, parent %q", parent)
	case <-time.After(200 * time.Millisecond):
	}

	close(releaseList)
	select {
	case parent := <-cardParents:
		assert.Equal(t, "srv-9", parent)
	case <-time.After(waitTimeout):
		t.Fatal("held card creation never released")
	}
	await(t, confirmed, "card confirm")

	h.Stop()
	_, stillProvisional := h.store.Card(localCard)
	assert.False(t, stillProvisional)
	card, ok := h.store.Card("srv-card-1")
	require.True(t, ok)
	assert.Equal(t, "srv-9", card.ListID)
	cards := h.store.CardsOfList("srv-9")
	require.Len(t, cards, 1)
}

func TestCreateCard_SafeAlongsidePushStream(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("/cards", func(w http.ResponseWriter, r *http.Request) {
		var patch model.CardPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Card{
			ID:       "srv-new",
			BoardID:  "b1",
			ListID:   *patch.ListID,
			Position: *patch.Position,
			Name:     *patch.Name,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	const pushed = 50
	var seedOnce, doneOnce stdsync.Once
	seeded := make(chan struct{})
	settled := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.List("l1"); ok {
			signal(&seedOnce, seeded)
		}
		if _, ok := st.Card("srv-new"); ok && len(st.CardsOfList("l1")) == pushed+1 {
			signal(&doneOnce, settled)
		}
	})

	pos := 65536.0
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	h.engine.Enqueue(event.PushUpsert{Entity: model.KindList, ID: "l1", Patch: model.ListPatch{BoardID: strp("b1"), Name: strp("Todo"), Position: &pos}})
	await(t, seeded, "list seed")

	// Act: pushes stream in from one goroutine while the UI creates a card
	go func() {
		for i := 0; i < pushed; i++ {
			p := float64(i+1) * 100
			h.engine.Enqueue(event.PushUpsert{Entity: model.KindCard, ID: fmt.Sprintf("c-push-%d", i), Patch: model.CardPatch{
				ListID:   strp("l1"),
				Name:     strp("pushed"),
				Position: &p,
			}})
		}
	}()
	localID := h.engine.CreateCard(context.Background(), "l1", model.CardPatch{Name: strp("mine")})

	// Assert: every row lands, the optimistic create reconciles
	assert.True(t, model.IsLocalID(localID))
	await(t, settled, "stream settled")

	h.Stop()
	card, ok := h.store.Card("srv-new")
	require.True(t, ok)
	assert.Equal(t, "mine", card.Name)
	assert.Len(t, h.store.CardsOfList("l1"), pushed+1)
}

func TestEnqueue_AfterShutdownDoesNotBlock(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()
	h := startEngine(t, srv.URL, nil)
	h.Stop()

	// Act: more events than the queue can buffer, with no reader left
	drained := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("B")}})
		}
		close(drained)
	}()

	// Assert
	await(t, drained, "enqueue after shutdown")
}

func TestUpdate_ProvisionalRowStaysLocal(t *testing.T) {
	// Arrange: any request to the server fails the test; provisional rows
	// must not produce update calls while their create is still pending
	requests := make(chan string, 8)
	mux := http.NewServeMux()
	mux.HandleFunc("/lists", func(w http.ResponseWriter, r *http.Request) {
		// Hold the create open so the list keeps its provisional id.
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "slow"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var seedOnce, renamedOnce stdsync.Once
	seeded := make(chan struct{})
	renamed := make(chan struct{})
	h := startEngine(t, srv.URL, func(st *store.Store) {
		if _, ok := st.Board("b1"); ok {
			signal(&seedOnce, seeded)
		}
		for _, l := range st.ListsOfBoard("b1") {
			if l.Name == "Renamed" {
				signal(&renamedOnce, renamed)
			}
		}
	})

	h.engine.Enqueue(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{Name: strp("Board")}})
	await(t, seeded, "board seed")

	// Act
	localID := h.engine.CreateList(context.Background(), "b1", model.ListPatch{Name: strp("Doing")})
	h.engine.UpdateList(context.Background(), localID, model.ListPatch{Name: strp("Renamed")})

	// Assert: the rename applied locally and no PATCH ever left the client
	await(t, renamed, "local rename")
	select {
	case req := <-requests:
		t.Fatalf("unexpected server call for provisional row: %s", req)
	case <-time.After(300 * time.Millisecond):
	}
}
