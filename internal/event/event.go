// Package event declares the synchronization events the store dispatches.
// Three sources feed the same queue: local optimistic intents, server
// responses to those intents, and push notifications about everyone else's
// edits. The store treats them uniformly.
package event

import "planboard/internal/model"

// Event is the closed set of variants below.
type Event interface {
	event()
}

// LocalCreate inserts an optimistic row under a provisional id.
// The patch must carry the parent foreign key.
type LocalCreate struct {
	Entity  model.Kind
	LocalID string
	Patch   any
}

// LocalUpdate merges the attributes present in Patch into the row.
type LocalUpdate struct {
	Entity model.Kind
	ID     string
	Patch  any
}

// LocalDelete removes the row and its owned descendants immediately.
// Issued against a still-provisional row it cancels the pending creation.
type LocalDelete struct {
	Entity model.Kind
	ID     string
}

// LocalMove places the row at Index among the children of ParentID.
// Index is 0-based, relative to the destination's ordered siblings with the
// moved row itself excluded.
type LocalMove struct {
	Entity   model.Kind
	ID       string
	ParentID string
	Index    int
}

// ServerConfirmCreate swaps the provisional id for the server-issued one
// across the whole store, atomically within one dispatch.
type ServerConfirmCreate struct {
	Entity  model.Kind
	LocalID string
	ID      string
	Patch   any
}

// ServerConfirmUpdate merges the server's view of an updated row.
type ServerConfirmUpdate struct {
	Entity model.Kind
	ID     string
	Patch  any
}

// ServerConfirmDelete repeats a delete cascade against the confirmed row;
// a no-op when the local cascade already removed it.
type ServerConfirmDelete struct {
	Entity model.Kind
	ID     string
}

// ServerReject rolls back the provisional row and its descendants.
type ServerReject struct {
	Entity  model.Kind
	LocalID string
	Reason  string
}

// PushUpsert applies a mutation made by another session. Idempotent.
type PushUpsert struct {
	Entity model.Kind
	ID     string
	Patch  any
}

// PushDelete applies a deletion made by another session, cascading.
type PushDelete struct {
	Entity model.Kind
	ID     string
}

// ConnectionReset clears every table ahead of a FullStateReplace. Rows that
// existed only as unconfirmed optimism are intentionally discarded.
type ConnectionReset struct{}

// FullStateReplace rehydrates the store from an authoritative snapshot.
type FullStateReplace struct {
	Snapshot Snapshot
}

func (LocalCreate) event()         {}
func (LocalUpdate) event()         {}
func (LocalDelete) event()         {}
func (LocalMove) event()           {}
func (ServerConfirmCreate) event() {}
func (ServerConfirmUpdate) event() {}
func (ServerConfirmDelete) event() {}
func (ServerReject) event()        {}
func (PushUpsert) event()          {}
func (PushDelete) event()          {}
func (ConnectionReset) event()     {}
func (FullStateReplace) event()    {}

// Snapshot is the authoritative full state of one board scope, as served by
// the board snapshot endpoint.
type Snapshot struct {
	Boards      []model.Board      `json:"boards"`
	Lists       []model.List       `json:"lists"`
	Cards       []model.Card       `json:"cards"`
	Tasks       []model.Task       `json:"tasks"`
	Labels      []model.Label      `json:"labels"`
	Memberships []model.Membership `json:"memberships"`
	Attachments []model.Attachment `json:"attachments"`
	Comments    []model.Comment    `json:"comments"`
	Users       []model.User       `json:"users"`
}
