package store

import "planboard/internal/model"

type listReducer struct{ s *Store }

func (r listReducer) has(id string) bool { return r.s.lists.Has(id) }

func (r listReducer) create(id string, patch any) error {
	l, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.lists.Put(l)
	return nil
}

func (r listReducer) update(id string, patch any) error {
	p, ok := patch.(model.ListPatch)
	if !ok {
		return ErrBadPatch
	}
	l, found := r.s.lists.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&l)
	if !r.s.boards.Has(l.BoardID) {
		return ErrMissingParent
	}
	r.s.lists.Put(l)
	return nil
}

func (r listReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	l, err := r.build(id, patch)
	if err != nil {
		return err
	}
	l.IsPersisted = true
	r.s.lists.Put(l)
	return nil
}

func (r listReducer) build(id string, patch any) (model.List, error) {
	p, ok := patch.(model.ListPatch)
	if !ok {
		return model.List{}, ErrBadPatch
	}
	l := model.List{ID: id}
	p.Apply(&l)
	if !r.s.boards.Has(l.BoardID) {
		return model.List{}, ErrMissingParent
	}
	return l, nil
}

func (r listReducer) remove(id string) bool { return r.s.removeList(id) }

func (r listReducer) drop(id string) { r.s.lists.Delete(id) }

func (r listReducer) rename(oldID, newID string) {
	l, ok := r.s.lists.Get(oldID)
	if !ok {
		return
	}
	l.ID = newID
	l.IsPersisted = true
	r.s.lists.Rename(oldID, l)
}

func (r listReducer) move(id, parentID string, index int) error {
	l, ok := r.s.lists.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	if !r.s.boards.Has(parentID) {
		return ErrMissingParent
	}
	sibs := r.s.listsByBoard.ChildrenOf(parentID)
	if l.BoardID == parentID && indexExcluding(sibs, id) == index {
		return nil
	}
	ordered := withoutID(sibs, id)
	l.BoardID = parentID
	placeAt(ordered, l, index,
		func(x *model.List, p float64) { x.Position = p },
		positionsOf(ordered, func(x model.List) float64 { return x.Position }),
		r.s.lists.Put)
	return nil
}
