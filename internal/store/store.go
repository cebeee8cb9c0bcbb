// Package store implements the client-side normalized entity store and the
// optimistic synchronization engine's state: typed tables per entity kind,
// lazily rebuilt relation indexes, and a single dispatcher that applies
// local, server and push events under the same consistency rules.
package store

import (
	"log"

	"planboard/internal/event"
	"planboard/internal/model"
)

// reducer is the per-entity-kind mutation surface the dispatcher drives.
// remove cascades through owned descendants; drop deletes the row alone.
type reducer interface {
	has(id string) bool
	create(id string, patch any) error
	update(id string, patch any) error
	upsert(id string, patch any) error
	remove(id string) bool
	drop(id string)
	rename(oldID, newID string)
	move(id, parentID string, index int) error
}

// Store holds one client's view of the board data. It is not safe for
// concurrent mutation; callers serialize events into Dispatch (the sync
// engine's queue does exactly that).
type Store struct {
	boards      *Table[model.Board]
	lists       *Table[model.List]
	cards       *Table[model.Card]
	tasks       *Table[model.Task]
	labels      *Table[model.Label]
	memberships *Table[model.Membership]
	attachments *Table[model.Attachment]
	comments    *Table[model.Comment]
	users       *Table[model.User]

	boardsByProject    *childIndex[model.Board]
	listsByBoard       *childIndex[model.List]
	cardsByList        *childIndex[model.Card]
	tasksByCard        *childIndex[model.Task]
	labelsByBoard      *childIndex[model.Label]
	membershipsByBoard *childIndex[model.Membership]
	attachmentsByCard  *childIndex[model.Attachment]
	commentsByCard     *childIndex[model.Comment]

	reducers map[model.Kind]reducer
	dropped  int
}

func New() *Store {
	s := &Store{
		boards:      NewTable[model.Board](),
		lists:       NewTable[model.List](),
		cards:       NewTable[model.Card](),
		tasks:       NewTable[model.Task](),
		labels:      NewTable[model.Label](),
		memberships: NewTable[model.Membership](),
		attachments: NewTable[model.Attachment](),
		comments:    NewTable[model.Comment](),
		users:       NewTable[model.User](),
	}

	s.boardsByProject = newChildIndex(s.boards,
		func(b model.Board) string { return b.ProjectID },
		func(b model.Board) float64 { return b.Position })
	s.listsByBoard = newChildIndex(s.lists,
		func(l model.List) string { return l.BoardID },
		func(l model.List) float64 { return l.Position })
	s.cardsByList = newChildIndex(s.cards,
		func(c model.Card) string { return c.ListID },
		func(c model.Card) float64 { return c.Position })
	s.tasksByCard = newChildIndex(s.tasks,
		func(t model.Task) string { return t.CardID },
		func(t model.Task) float64 { return t.Position })
	s.labelsByBoard = newChildIndex(s.labels,
		func(l model.Label) string { return l.BoardID },
		func(l model.Label) float64 { return l.Position })
	s.membershipsByBoard = newChildIndex(s.memberships,
		func(m model.Membership) string { return m.BoardID },
		func(m model.Membership) float64 { return 0 })
	s.attachmentsByCard = newChildIndex(s.attachments,
		func(a model.Attachment) string { return a.CardID },
		func(a model.Attachment) float64 { return 0 })
	s.commentsByCard = newChildIndex(s.comments,
		func(c model.Comment) string { return c.CardID },
		func(c model.Comment) float64 { return 0 })

	s.reducers = map[model.Kind]reducer{
		model.KindBoard:      boardReducer{s},
		model.KindList:       listReducer{s},
		model.KindCard:       cardReducer{s},
		model.KindTask:       taskReducer{s},
		model.KindLabel:      labelReducer{s},
		model.KindMembership: membershipReducer{s},
		model.KindAttachment: attachmentReducer{s},
		model.KindComment:    commentReducer{s},
		model.KindUser:       userReducer{s},
	}
	return s
}

// Dispatch applies one event. Events either commit all their table mutations
// or are dropped whole on a structural violation; there is no partial state.
func (s *Store) Dispatch(e event.Event) {
	var err error
	switch ev := e.(type) {
	case event.ConnectionReset:
		s.reset()
	case event.FullStateReplace:
		s.replace(ev.Snapshot)
	case event.LocalCreate:
		err = s.with(ev.Entity, func(r reducer) error { return r.create(ev.LocalID, ev.Patch) })
	case event.LocalUpdate:
		err = s.with(ev.Entity, func(r reducer) error { return r.update(ev.ID, ev.Patch) })
	case event.LocalDelete:
		err = s.with(ev.Entity, func(r reducer) error { r.remove(ev.ID); return nil })
	case event.LocalMove:
		err = s.with(ev.Entity, func(r reducer) error { return r.move(ev.ID, ev.ParentID, ev.Index) })
	case event.ServerConfirmCreate:
		err = s.with(ev.Entity, func(r reducer) error { return s.confirmCreate(r, ev) })
	case event.ServerConfirmUpdate:
		err = s.with(ev.Entity, func(r reducer) error { return r.upsert(ev.ID, ev.Patch) })
	case event.ServerConfirmDelete:
		err = s.with(ev.Entity, func(r reducer) error { r.remove(ev.ID); return nil })
	case event.ServerReject:
		err = s.with(ev.Entity, func(r reducer) error { r.remove(ev.LocalID); return nil })
	case event.PushUpsert:
		err = s.with(ev.Entity, func(r reducer) error { return r.upsert(ev.ID, ev.Patch) })
	case event.PushDelete:
		err = s.with(ev.Entity, func(r reducer) error { r.remove(ev.ID); return nil })
	}
	if err != nil {
		s.dropped++
		log.Printf("store: dropped %T: %v", e, err)
	}
}

// DroppedEvents reports how many events were dropped on structural
// violations since the store was created.
func (s *Store) DroppedEvents() int {
	return s.dropped
}

func (s *Store) with(kind model.Kind, fn func(reducer) error) error {
	r, ok := s.reducers[kind]
	if !ok {
		return ErrUnknownEntity
	}
	return fn(r)
}

// confirmCreate reconciles a provisional row with its server-issued id. The
// swap is one dispatch step: insert under the confirmed id, rewrite every
// reference to the provisional id, delete the provisional row.
func (s *Store) confirmCreate(r reducer, ev event.ServerConfirmCreate) error {
	if !r.has(ev.LocalID) {
		// Deleted locally before the confirmation arrived; the pending
		// delete already went to the server, nothing to reconcile.
		return nil
	}
	if r.has(ev.ID) {
		// A push for the same conceptual entity won the race. The push
		// row stands; the confirm degrades to an idempotent merge.
		if ev.Patch != nil {
			if err := r.update(ev.ID, ev.Patch); err != nil {
				return err
			}
		}
		r.drop(ev.LocalID)
	} else {
		r.rename(ev.LocalID, ev.ID)
		if ev.Patch != nil {
			if err := r.update(ev.ID, ev.Patch); err != nil {
				return err
			}
		}
	}
	s.rewriteRefs(ev.LocalID, ev.ID)
	return nil
}

// rewriteRefs rewrites every foreign key and association entry pointing at
// oldID to point at newID.
func (s *Store) rewriteRefs(oldID, newID string) {
	for _, b := range s.boards.All() {
		changed := replaceID(b.FilterUserIDs, oldID, newID)
		changed = replaceID(b.FilterLabelIDs, oldID, newID) || changed
		if changed {
			s.boards.Put(b)
		}
	}
	for _, l := range s.lists.All() {
		if l.BoardID == oldID {
			l.BoardID = newID
			s.lists.Put(l)
		}
	}
	for _, c := range s.cards.All() {
		changed := false
		if c.BoardID == oldID {
			c.BoardID = newID
			changed = true
		}
		if c.ListID == oldID {
			c.ListID = newID
			changed = true
		}
		changed = replaceID(c.UserIDs, oldID, newID) || changed
		changed = replaceID(c.LabelIDs, oldID, newID) || changed
		if changed {
			s.cards.Put(c)
		}
	}
	for _, t := range s.tasks.All() {
		changed := false
		if t.CardID == oldID {
			t.CardID = newID
			changed = true
		}
		changed = replaceID(t.UserIDs, oldID, newID) || changed
		if changed {
			s.tasks.Put(t)
		}
	}
	for _, l := range s.labels.All() {
		if l.BoardID == oldID {
			l.BoardID = newID
			s.labels.Put(l)
		}
	}
	for _, m := range s.memberships.All() {
		changed := false
		if m.BoardID == oldID {
			m.BoardID = newID
			changed = true
		}
		if m.UserID == oldID {
			m.UserID = newID
			changed = true
		}
		if changed {
			s.memberships.Put(m)
		}
	}
	for _, a := range s.attachments.All() {
		if a.CardID == oldID {
			a.CardID = newID
			s.attachments.Put(a)
		}
	}
	for _, c := range s.comments.All() {
		changed := false
		if c.CardID == oldID {
			c.CardID = newID
			changed = true
		}
		if c.UserID == oldID {
			c.UserID = newID
			changed = true
		}
		if changed {
			s.comments.Put(c)
		}
	}
}

func replaceID(ids []string, oldID, newID string) bool {
	changed := false
	for i, id := range ids {
		if id == oldID {
			ids[i] = newID
			changed = true
		}
	}
	return changed
}
