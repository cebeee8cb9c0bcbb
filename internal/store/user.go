package store

import "planboard/internal/model"

// Users are referenced, never created optimistically: rows arrive through
// pushes and snapshots only, so create is rejected.
type userReducer struct{ s *Store }

func (r userReducer) has(id string) bool { return r.s.users.Has(id) }

func (r userReducer) create(string, any) error { return ErrBadPatch }

func (r userReducer) update(id string, patch any) error {
	p, ok := patch.(model.UserPatch)
	if !ok {
		return ErrBadPatch
	}
	u, found := r.s.users.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&u)
	r.s.users.Put(u)
	return nil
}

func (r userReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	p, ok := patch.(model.UserPatch)
	if !ok {
		return ErrBadPatch
	}
	u := model.User{ID: id, IsPersisted: true}
	p.Apply(&u)
	r.s.users.Put(u)
	return nil
}

func (r userReducer) remove(id string) bool { return r.s.removeUser(id) }

func (r userReducer) drop(id string) { r.s.users.Delete(id) }

func (r userReducer) rename(oldID, newID string) {
	u, ok := r.s.users.Get(oldID)
	if !ok {
		return
	}
	u.ID = newID
	u.IsPersisted = true
	r.s.users.Rename(oldID, u)
}

func (r userReducer) move(string, string, int) error { return ErrUnsupportedMove }
