// Package sync ties the entity store to the server: it serializes the three
// event sources (local intents, server confirmations, push notifications)
// into one queue, issues the REST calls behind optimistic mutations, and
// keeps the push channel alive across reconnects.
package sync

import (
	"context"

	"github.com/google/uuid"

	"planboard/internal/event"
	"planboard/internal/model"
	"planboard/internal/store"
)

// Rejection reports one refused operation to the interaction layer. The
// store has already rolled back the optimistic row when the operation was a
// creation.
type Rejection struct {
	Entity model.Kind
	ID     string
	Reason string
}

type queued struct {
	// build runs on the queue goroutine and returns the event to apply, so
	// it may read the store without racing concurrent dispatches. A nil
	// event applies nothing.
	build func() event.Event
	// after runs on the queue goroutine once the event is applied, so it
	// can read store state the event just produced (e.g. an allocated
	// position).
	after func()
}

// Engine is the client's synchronization engine. All store access flows
// through Run's goroutine; intent methods are safe to call from the UI.
type Engine struct {
	store  *store.Store
	api    *Client
	events chan queued
	done   chan struct{}

	// held keeps outbound creates whose payload still references a
	// provisional id, keyed by the id they wait on. Queue goroutine only.
	held map[string][]heldCreate

	// OnChange fires after each applied event; the rendering layer
	// re-reads the store then. OnReject surfaces refused operations.
	OnChange func()
	OnReject func(Rejection)
}

type heldCreate struct {
	ctx     context.Context
	kind    model.Kind
	path    string
	localID string
	patch   any
}

func NewEngine(st *store.Store, api *Client) *Engine {
	if api.ClientID == "" {
		api.ClientID = uuid.NewString()
	}
	return &Engine{
		store:  st,
		api:    api,
		events: make(chan queued, 256),
		done:   make(chan struct{}),
		held:   make(map[string][]heldCreate),
	}
}

// Store exposes the read surface for the rendering layer.
func (e *Engine) Store() *store.Store { return e.store }

// Enqueue hands an externally produced event to the serialized queue.
func (e *Engine) Enqueue(ev event.Event) { e.enqueue(ev, nil) }

func (e *Engine) enqueue(ev event.Event, after func()) {
	e.push(queued{build: func() event.Event { return ev }, after: after})
}

func (e *Engine) push(q queued) {
	select {
	case e.events <- q:
	case <-e.done:
		// Run has exited; late results from in-flight requests are
		// dropped instead of blocking their goroutines forever.
	}
}

// Run applies queued events strictly one at a time in arrival order until
// the context is cancelled. It is called at most once per engine.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-e.events:
			if ev := q.build(); ev != nil {
				e.store.Dispatch(ev)
			}
			if q.after != nil {
				q.after()
			}
			if e.OnChange != nil {
				e.OnChange()
			}
		}
	}
}

func (e *Engine) reject(kind model.Kind, id string, err error) {
	reason := err.Error()
	if model.IsLocalID(id) {
		// Roll back the optimistic row whether the server refused or the
		// request never made it; creates held under it go down with it.
		e.enqueue(event.ServerReject{Entity: kind, LocalID: id, Reason: reason}, func() {
			e.discardHeld(id)
		})
	}
	if e.OnReject != nil {
		e.OnReject(Rejection{Entity: kind, ID: id, Reason: reason})
	}
}

// submitCreate dispatches the optimistic insert and races the server call;
// the outcome re-enters the queue as a confirm or reject event. build runs
// on the queue goroutine so it can read the store to allocate a position.
func (e *Engine) submitCreate(ctx context.Context, kind model.Kind, path string, build func() any) string {
	localID := model.NewLocalID()
	var patch any
	e.push(queued{
		build: func() event.Event {
			patch = build()
			return event.LocalCreate{Entity: kind, LocalID: localID, Patch: patch}
		},
		after: func() {
			e.sendCreate(heldCreate{ctx: ctx, kind: kind, path: path, localID: localID, patch: patch})
		},
	})
	return localID
}

// sendCreate posts the creation, unless the payload still references a
// provisional id. Such a request is held back and released, with the
// reference rewritten, once that id's confirmation lands; a provisional id
// must never reach the server.
func (e *Engine) sendCreate(hc heldCreate) {
	if dep, ok := provisionalRef(hc.patch); ok {
		e.held[dep] = append(e.held[dep], hc)
		return
	}
	go func() {
		id, serverPatch, err := e.api.createItem(hc.ctx, hc.kind, hc.path, hc.patch)
		if err != nil {
			e.reject(hc.kind, hc.localID, err)
			return
		}
		e.enqueue(event.ServerConfirmCreate{Entity: hc.kind, LocalID: hc.localID, ID: id, Patch: serverPatch},
			func() { e.releaseHeld(hc.localID, id) })
	}()
}

func (e *Engine) releaseHeld(localID, confirmedID string) {
	waiting := e.held[localID]
	delete(e.held, localID)
	for _, hc := range waiting {
		if !e.store.Has(hc.kind, hc.localID) {
			// Deleted locally while held; nothing to persist, and
			// anything waiting on it dies with it.
			e.discardHeld(hc.localID)
			continue
		}
		hc.patch = rewriteRef(hc.patch, localID, confirmedID)
		e.sendCreate(hc)
	}
}

// discardHeld drops held creates transitively when the row they wait on is
// rolled back or deleted.
func (e *Engine) discardHeld(localID string) {
	waiting := e.held[localID]
	delete(e.held, localID)
	for _, hc := range waiting {
		e.discardHeld(hc.localID)
	}
}

func (e *Engine) submitUpdate(ctx context.Context, kind model.Kind, id, path string, patch any) {
	e.enqueue(event.LocalUpdate{Entity: kind, ID: id, Patch: patch}, func() {
		if model.IsLocalID(id) {
			// The row is not on the server yet; the pending create
			// carries whatever state the confirm returns.
			return
		}
		go func() {
			confirmedID, serverPatch, err := e.api.updateItem(ctx, kind, path, patch)
			if err != nil {
				e.reject(kind, id, err)
				return
			}
			e.Enqueue(event.ServerConfirmUpdate{Entity: kind, ID: confirmedID, Patch: serverPatch})
		}()
	})
}

// submitBuiltUpdate is submitUpdate with the patch computed on the queue
// goroutine, for intents that derive it from current store state. A nil
// patch from build cancels the intent.
func (e *Engine) submitBuiltUpdate(ctx context.Context, kind model.Kind, id, path string, build func() any) {
	var patch any
	e.push(queued{
		build: func() event.Event {
			patch = build()
			if patch == nil {
				return nil
			}
			return event.LocalUpdate{Entity: kind, ID: id, Patch: patch}
		},
		after: func() {
			if patch == nil || model.IsLocalID(id) {
				return
			}
			go func() {
				confirmedID, serverPatch, err := e.api.updateItem(ctx, kind, path, patch)
				if err != nil {
					e.reject(kind, id, err)
					return
				}
				e.Enqueue(event.ServerConfirmUpdate{Entity: kind, ID: confirmedID, Patch: serverPatch})
			}()
		},
	})
}

func (e *Engine) submitDelete(ctx context.Context, kind model.Kind, id, path string) {
	e.enqueue(event.LocalDelete{Entity: kind, ID: id}, func() {
		if model.IsLocalID(id) {
			// Cancels the pending creation; the in-flight create result
			// is discarded by the reconciler, held children with it.
			e.discardHeld(id)
			return
		}
		go func() {
			if err := e.api.deleteItem(ctx, path); err != nil {
				e.reject(kind, id, err)
				return
			}
			e.Enqueue(event.ServerConfirmDelete{Entity: kind, ID: id})
		}()
	})
}

type moveRequest struct {
	ParentID string  `json:"parentId"`
	Position float64 `json:"position"`
}

// submitMove lets the store's allocator compute the position, then forwards
// the result. Provisional rows move locally only; they are reconciled by
// their pending create.
func (e *Engine) submitMove(ctx context.Context, kind model.Kind, id, parentID string, index int,
	path string, read func() (float64, bool)) {
	e.enqueue(event.LocalMove{Entity: kind, ID: id, ParentID: parentID, Index: index}, func() {
		if model.IsLocalID(id) || model.IsLocalID(parentID) {
			return
		}
		pos, ok := read()
		if !ok {
			return
		}
		go func() {
			confirmedID, serverPatch, err := e.api.moveItem(ctx, kind, path, moveRequest{
				ParentID: parentID,
				Position: pos,
			})
			if err != nil {
				e.reject(kind, id, err)
				return
			}
			e.Enqueue(event.ServerConfirmUpdate{Entity: kind, ID: confirmedID, Patch: serverPatch})
		}()
	})
}

// provisionalRef reports the first provisional id a create payload
// references. Association id lists count too: a member or label picked
// before its own confirmation must not go on the wire either.
func provisionalRef(patch any) (string, bool) {
	for _, id := range refIDs(patch) {
		if model.IsLocalID(id) {
			return id, true
		}
	}
	return "", false
}

func refIDs(patch any) []string {
	var ids []string
	add := func(s *string) {
		if s != nil {
			ids = append(ids, *s)
		}
	}
	addAll := func(s *[]string) {
		if s != nil {
			ids = append(ids, *s...)
		}
	}
	switch p := patch.(type) {
	case model.ListPatch:
		add(p.BoardID)
	case model.CardPatch:
		add(p.BoardID)
		add(p.ListID)
		addAll(p.UserIDs)
		addAll(p.LabelIDs)
	case model.TaskPatch:
		add(p.CardID)
		addAll(p.UserIDs)
	case model.LabelPatch:
		add(p.BoardID)
	case model.AttachmentPatch:
		add(p.CardID)
	case model.CommentPatch:
		add(p.CardID)
	case model.MembershipPatch:
		add(p.BoardID)
		add(p.UserID)
	}
	return ids
}

// rewriteRef replaces one id with its confirmed value wherever the payload
// references it.
func rewriteRef(patch any, oldID, newID string) any {
	swap := func(s *string) *string {
		if s != nil && *s == oldID {
			v := newID
			return &v
		}
		return s
	}
	swapAll := func(s *[]string) *[]string {
		if s == nil {
			return nil
		}
		changed := false
		out := make([]string, len(*s))
		copy(out, *s)
		for i, id := range out {
			if id == oldID {
				out[i] = newID
				changed = true
			}
		}
		if !changed {
			return s
		}
		return &out
	}
	switch p := patch.(type) {
	case model.ListPatch:
		p.BoardID = swap(p.BoardID)
		return p
	case model.CardPatch:
		p.BoardID = swap(p.BoardID)
		p.ListID = swap(p.ListID)
		p.UserIDs = swapAll(p.UserIDs)
		p.LabelIDs = swapAll(p.LabelIDs)
		return p
	case model.TaskPatch:
		p.CardID = swap(p.CardID)
		p.UserIDs = swapAll(p.UserIDs)
		return p
	case model.LabelPatch:
		p.BoardID = swap(p.BoardID)
		return p
	case model.AttachmentPatch:
		p.CardID = swap(p.CardID)
		return p
	case model.CommentPatch:
		p.CardID = swap(p.CardID)
		return p
	case model.MembershipPatch:
		p.BoardID = swap(p.BoardID)
		p.UserID = swap(p.UserID)
		return p
	default:
		return patch
	}
}
