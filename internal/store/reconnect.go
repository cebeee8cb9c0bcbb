package store

import "planboard/internal/event"

// reset clears every table ahead of rehydration. Rows that existed only as
// unconfirmed local optimism are discarded with everything else; the
// authoritative snapshot that follows takes precedence.
func (s *Store) reset() {
	s.comments.Clear()
	s.attachments.Clear()
	s.tasks.Clear()
	s.cards.Clear()
	s.lists.Clear()
	s.labels.Clear()
	s.memberships.Clear()
	s.boards.Clear()
	s.users.Clear()
}

// replace rehydrates the store from a snapshot, parents before children so
// the referential checks in later event handling always find their rows.
// Snapshot rows are authoritative and inserted verbatim.
func (s *Store) replace(snap event.Snapshot) {
	for _, u := range snap.Users {
		u.IsPersisted = true
		s.users.Put(u)
	}
	for _, b := range snap.Boards {
		b.IsPersisted = true
		s.boards.Put(b)
	}
	for _, l := range snap.Labels {
		l.IsPersisted = true
		s.labels.Put(l)
	}
	for _, m := range snap.Memberships {
		m.IsPersisted = true
		s.memberships.Put(m)
	}
	for _, l := range snap.Lists {
		l.IsPersisted = true
		s.lists.Put(l)
	}
	for _, c := range snap.Cards {
		c.IsPersisted = true
		s.cards.Put(c)
	}
	for _, t := range snap.Tasks {
		t.IsPersisted = true
		s.tasks.Put(t)
	}
	for _, a := range snap.Attachments {
		a.IsPersisted = true
		s.attachments.Put(a)
	}
	for _, c := range snap.Comments {
		c.IsPersisted = true
		s.comments.Put(c)
	}
}
