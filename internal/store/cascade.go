package store

// Cascade deletion walks ownership edges depth-first and deletes leaves
// before their owners, so no dangling foreign key is observable mid-cascade.
// Non-owning associations (card members, card labels, board filters) are
// invalidated when either side goes away.

func (s *Store) removeBoard(id string) bool {
	if !s.boards.Has(id) {
		return false
	}
	for _, l := range s.listsByBoard.ChildrenOf(id) {
		s.removeList(l.ID)
	}
	for _, l := range s.labelsByBoard.ChildrenOf(id) {
		s.removeLabel(l.ID)
	}
	for _, m := range s.membershipsByBoard.ChildrenOf(id) {
		s.removeMembership(m.ID)
	}
	return s.boards.Delete(id)
}

func (s *Store) removeList(id string) bool {
	if !s.lists.Has(id) {
		return false
	}
	for _, c := range s.cardsByList.ChildrenOf(id) {
		s.removeCard(c.ID)
	}
	return s.lists.Delete(id)
}

func (s *Store) removeCard(id string) bool {
	if !s.cards.Has(id) {
		return false
	}
	for _, t := range s.tasksByCard.ChildrenOf(id) {
		s.tasks.Delete(t.ID)
	}
	for _, a := range s.attachmentsByCard.ChildrenOf(id) {
		s.attachments.Delete(a.ID)
	}
	for _, c := range s.commentsByCard.ChildrenOf(id) {
		s.comments.Delete(c.ID)
	}
	return s.cards.Delete(id)
}

func (s *Store) removeLabel(id string) bool {
	l, ok := s.labels.Get(id)
	if !ok {
		return false
	}
	for _, c := range s.cards.All() {
		if ids, changed := withoutString(c.LabelIDs, id); changed {
			c.LabelIDs = ids
			s.cards.Put(c)
		}
	}
	if b, found := s.boards.Get(l.BoardID); found {
		if ids, changed := withoutString(b.FilterLabelIDs, id); changed {
			b.FilterLabelIDs = ids
			s.boards.Put(b)
		}
	}
	return s.labels.Delete(id)
}

func (s *Store) removeMembership(id string) bool {
	m, ok := s.memberships.Get(id)
	if !ok {
		return false
	}
	// Leaving a board also drops the departed user from its filter state;
	// the user row itself survives, it is referenced, not owned.
	if b, found := s.boards.Get(m.BoardID); found {
		if ids, changed := withoutString(b.FilterUserIDs, m.UserID); changed {
			b.FilterUserIDs = ids
			s.boards.Put(b)
		}
	}
	return s.memberships.Delete(id)
}

func (s *Store) removeUser(id string) bool {
	if !s.users.Has(id) {
		return false
	}
	for _, m := range s.memberships.All() {
		if m.UserID == id {
			s.removeMembership(m.ID)
		}
	}
	for _, c := range s.cards.All() {
		if ids, changed := withoutString(c.UserIDs, id); changed {
			c.UserIDs = ids
			s.cards.Put(c)
		}
	}
	for _, t := range s.tasks.All() {
		if ids, changed := withoutString(t.UserIDs, id); changed {
			t.UserIDs = ids
			s.tasks.Put(t)
		}
	}
	return s.users.Delete(id)
}

func withoutString(ids []string, drop string) ([]string, bool) {
	changed := false
	out := ids[:0:0]
	for _, id := range ids {
		if id == drop {
			changed = true
			continue
		}
		out = append(out, id)
	}
	if !changed {
		return ids, false
	}
	return out, true
}
