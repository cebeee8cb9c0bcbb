package store

import "planboard/internal/model"

type commentReducer struct{ s *Store }

func (r commentReducer) has(id string) bool { return r.s.comments.Has(id) }

func (r commentReducer) create(id string, patch any) error {
	c, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.comments.Put(c)
	return nil
}

func (r commentReducer) update(id string, patch any) error {
	p, ok := patch.(model.CommentPatch)
	if !ok {
		return ErrBadPatch
	}
	c, found := r.s.comments.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&c)
	if !r.s.cards.Has(c.CardID) {
		return ErrMissingParent
	}
	r.s.comments.Put(c)
	return nil
}

func (r commentReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	c, err := r.build(id, patch)
	if err != nil {
		return err
	}
	c.IsPersisted = true
	r.s.comments.Put(c)
	return nil
}

func (r commentReducer) build(id string, patch any) (model.Comment, error) {
	p, ok := patch.(model.CommentPatch)
	if !ok {
		return model.Comment{}, ErrBadPatch
	}
	c := model.Comment{ID: id}
	p.Apply(&c)
	if !r.s.cards.Has(c.CardID) {
		return model.Comment{}, ErrMissingParent
	}
	return c, nil
}

func (r commentReducer) remove(id string) bool { return r.s.comments.Delete(id) }

func (r commentReducer) drop(id string) { r.s.comments.Delete(id) }

func (r commentReducer) rename(oldID, newID string) {
	c, ok := r.s.comments.Get(oldID)
	if !ok {
		return
	}
	c.ID = newID
	c.IsPersisted = true
	r.s.comments.Rename(oldID, c)
}

func (r commentReducer) move(string, string, int) error { return ErrUnsupportedMove }
