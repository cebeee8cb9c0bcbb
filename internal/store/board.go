package store

import "planboard/internal/model"

type boardReducer struct{ s *Store }

func (r boardReducer) has(id string) bool { return r.s.boards.Has(id) }

func (r boardReducer) create(id string, patch any) error {
	p, ok := patch.(model.BoardPatch)
	if !ok {
		return ErrBadPatch
	}
	b := model.Board{ID: id}
	p.Apply(&b)
	r.s.boards.Put(b)
	return nil
}

func (r boardReducer) update(id string, patch any) error {
	p, ok := patch.(model.BoardPatch)
	if !ok {
		return ErrBadPatch
	}
	b, found := r.s.boards.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&b)
	r.s.boards.Put(b)
	return nil
}

func (r boardReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	p, ok := patch.(model.BoardPatch)
	if !ok {
		return ErrBadPatch
	}
	b := model.Board{ID: id, IsPersisted: true}
	p.Apply(&b)
	r.s.boards.Put(b)
	return nil
}

func (r boardReducer) remove(id string) bool { return r.s.removeBoard(id) }

func (r boardReducer) drop(id string) { r.s.boards.Delete(id) }

func (r boardReducer) rename(oldID, newID string) {
	b, ok := r.s.boards.Get(oldID)
	if !ok {
		return
	}
	b.ID = newID
	b.IsPersisted = true
	r.s.boards.Rename(oldID, b)
}

func (r boardReducer) move(id, parentID string, index int) error {
	b, ok := r.s.boards.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	sibs := r.s.boardsByProject.ChildrenOf(parentID)
	if b.ProjectID == parentID && indexExcluding(sibs, id) == index {
		return nil
	}
	ordered := withoutID(sibs, id)
	b.ProjectID = parentID
	placeAt(ordered, b, index,
		func(x *model.Board, p float64) { x.Position = p },
		positionsOf(ordered, func(x model.Board) float64 { return x.Position }),
		r.s.boards.Put)
	return nil
}
