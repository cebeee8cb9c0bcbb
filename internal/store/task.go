package store

import "planboard/internal/model"

type taskReducer struct{ s *Store }

func (r taskReducer) has(id string) bool { return r.s.tasks.Has(id) }

func (r taskReducer) create(id string, patch any) error {
	t, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.tasks.Put(t)
	return nil
}

func (r taskReducer) update(id string, patch any) error {
	p, ok := patch.(model.TaskPatch)
	if !ok {
		return ErrBadPatch
	}
	t, found := r.s.tasks.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&t)
	if !r.s.cards.Has(t.CardID) {
		return ErrMissingParent
	}
	r.s.tasks.Put(t)
	return nil
}

func (r taskReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	t, err := r.build(id, patch)
	if err != nil {
		return err
	}
	t.IsPersisted = true
	r.s.tasks.Put(t)
	return nil
}

func (r taskReducer) build(id string, patch any) (model.Task, error) {
	p, ok := patch.(model.TaskPatch)
	if !ok {
		return model.Task{}, ErrBadPatch
	}
	t := model.Task{ID: id}
	p.Apply(&t)
	if !r.s.cards.Has(t.CardID) {
		return model.Task{}, ErrMissingParent
	}
	return t, nil
}

func (r taskReducer) remove(id string) bool { return r.s.tasks.Delete(id) }

func (r taskReducer) drop(id string) { r.s.tasks.Delete(id) }

func (r taskReducer) rename(oldID, newID string) {
	t, ok := r.s.tasks.Get(oldID)
	if !ok {
		return
	}
	t.ID = newID
	t.IsPersisted = true
	r.s.tasks.Rename(oldID, t)
}

func (r taskReducer) move(id, parentID string, index int) error {
	t, ok := r.s.tasks.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	if !r.s.cards.Has(parentID) {
		return ErrMissingParent
	}
	sibs := r.s.tasksByCard.ChildrenOf(parentID)
	if t.CardID == parentID && indexExcluding(sibs, id) == index {
		return nil
	}
	ordered := withoutID(sibs, id)
	t.CardID = parentID
	placeAt(ordered, t, index,
		func(x *model.Task, p float64) { x.Position = p },
		positionsOf(ordered, func(x model.Task) float64 { return x.Position }),
		r.s.tasks.Put)
	return nil
}
