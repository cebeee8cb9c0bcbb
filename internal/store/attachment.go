package store

import "planboard/internal/model"

type attachmentReducer struct{ s *Store }

func (r attachmentReducer) has(id string) bool { return r.s.attachments.Has(id) }

func (r attachmentReducer) create(id string, patch any) error {
	a, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.attachments.Put(a)
	return nil
}

func (r attachmentReducer) update(id string, patch any) error {
	p, ok := patch.(model.AttachmentPatch)
	if !ok {
		return ErrBadPatch
	}
	a, found := r.s.attachments.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&a)
	if !r.s.cards.Has(a.CardID) {
		return ErrMissingParent
	}
	r.s.attachments.Put(a)
	return nil
}

func (r attachmentReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	a, err := r.build(id, patch)
	if err != nil {
		return err
	}
	a.IsPersisted = true
	r.s.attachments.Put(a)
	return nil
}

func (r attachmentReducer) build(id string, patch any) (model.Attachment, error) {
	p, ok := patch.(model.AttachmentPatch)
	if !ok {
		return model.Attachment{}, ErrBadPatch
	}
	a := model.Attachment{ID: id}
	p.Apply(&a)
	if !r.s.cards.Has(a.CardID) {
		return model.Attachment{}, ErrMissingParent
	}
	return a, nil
}

func (r attachmentReducer) remove(id string) bool { return r.s.attachments.Delete(id) }

func (r attachmentReducer) drop(id string) { r.s.attachments.Delete(id) }

func (r attachmentReducer) rename(oldID, newID string) {
	a, ok := r.s.attachments.Get(oldID)
	if !ok {
		return
	}
	a.ID = newID
	a.IsPersisted = true
	r.s.attachments.Rename(oldID, a)
}

func (r attachmentReducer) move(string, string, int) error { return ErrUnsupportedMove }
