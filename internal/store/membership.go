package store

import "planboard/internal/model"

type membershipReducer struct{ s *Store }

func (r membershipReducer) has(id string) bool { return r.s.memberships.Has(id) }

func (r membershipReducer) create(id string, patch any) error {
	m, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.memberships.Put(m)
	return nil
}

func (r membershipReducer) update(id string, patch any) error {
	p, ok := patch.(model.MembershipPatch)
	if !ok {
		return ErrBadPatch
	}
	m, found := r.s.memberships.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&m)
	if !r.s.boards.Has(m.BoardID) || !r.s.users.Has(m.UserID) {
		return ErrMissingParent
	}
	r.s.memberships.Put(m)
	return nil
}

func (r membershipReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	m, err := r.build(id, patch)
	if err != nil {
		return err
	}
	m.IsPersisted = true
	r.s.memberships.Put(m)
	return nil
}

func (r membershipReducer) build(id string, patch any) (model.Membership, error) {
	p, ok := patch.(model.MembershipPatch)
	if !ok {
		return model.Membership{}, ErrBadPatch
	}
	m := model.Membership{ID: id}
	p.Apply(&m)
	if !r.s.boards.Has(m.BoardID) || !r.s.users.Has(m.UserID) {
		return model.Membership{}, ErrMissingParent
	}
	return m, nil
}

func (r membershipReducer) remove(id string) bool { return r.s.removeMembership(id) }

func (r membershipReducer) drop(id string) { r.s.memberships.Delete(id) }

func (r membershipReducer) rename(oldID, newID string) {
	m, ok := r.s.memberships.Get(oldID)
	if !ok {
		return
	}
	m.ID = newID
	m.IsPersisted = true
	r.s.memberships.Rename(oldID, m)
}

func (r membershipReducer) move(string, string, int) error { return ErrUnsupportedMove }
