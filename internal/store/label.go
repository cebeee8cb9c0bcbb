package store

import "planboard/internal/model"

type labelReducer struct{ s *Store }

func (r labelReducer) has(id string) bool { return r.s.labels.Has(id) }

func (r labelReducer) create(id string, patch any) error {
	l, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.labels.Put(l)
	return nil
}

func (r labelReducer) update(id string, patch any) error {
	p, ok := patch.(model.LabelPatch)
	if !ok {
		return ErrBadPatch
	}
	l, found := r.s.labels.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&l)
	if !r.s.boards.Has(l.BoardID) {
		return ErrMissingParent
	}
	r.s.labels.Put(l)
	return nil
}

func (r labelReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	l, err := r.build(id, patch)
	if err != nil {
		return err
	}
	l.IsPersisted = true
	r.s.labels.Put(l)
	return nil
}

func (r labelReducer) build(id string, patch any) (model.Label, error) {
	p, ok := patch.(model.LabelPatch)
	if !ok {
		return model.Label{}, ErrBadPatch
	}
	l := model.Label{ID: id}
	p.Apply(&l)
	if !r.s.boards.Has(l.BoardID) {
		return model.Label{}, ErrMissingParent
	}
	return l, nil
}

func (r labelReducer) remove(id string) bool { return r.s.removeLabel(id) }

func (r labelReducer) drop(id string) { r.s.labels.Delete(id) }

func (r labelReducer) rename(oldID, newID string) {
	l, ok := r.s.labels.Get(oldID)
	if !ok {
		return
	}
	l.ID = newID
	l.IsPersisted = true
	r.s.labels.Rename(oldID, l)
}

func (r labelReducer) move(id, parentID string, index int) error {
	l, ok := r.s.labels.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	if !r.s.boards.Has(parentID) {
		return ErrMissingParent
	}
	sibs := r.s.labelsByBoard.ChildrenOf(parentID)
	if l.BoardID == parentID && indexExcluding(sibs, id) == index {
		return nil
	}
	ordered := withoutID(sibs, id)
	l.BoardID = parentID
	placeAt(ordered, l, index,
		func(x *model.Label, p float64) { x.Position = p },
		positionsOf(ordered, func(x model.Label) float64 { return x.Position }),
		r.s.labels.Put)
	return nil
}
