package store

import "planboard/internal/model"

type cardReducer struct{ s *Store }

func (r cardReducer) has(id string) bool { return r.s.cards.Has(id) }

func (r cardReducer) create(id string, patch any) error {
	c, err := r.build(id, patch)
	if err != nil {
		return err
	}
	r.s.cards.Put(c)
	return nil
}

func (r cardReducer) update(id string, patch any) error {
	p, ok := patch.(model.CardPatch)
	if !ok {
		return ErrBadPatch
	}
	c, found := r.s.cards.Get(id)
	if !found {
		return ErrRowNotFound
	}
	p.Apply(&c)
	if !r.s.lists.Has(c.ListID) {
		return ErrMissingParent
	}
	r.s.cards.Put(c)
	return nil
}

func (r cardReducer) upsert(id string, patch any) error {
	if r.has(id) {
		return r.update(id, patch)
	}
	c, err := r.build(id, patch)
	if err != nil {
		return err
	}
	c.IsPersisted = true
	r.s.cards.Put(c)
	return nil
}

func (r cardReducer) build(id string, patch any) (model.Card, error) {
	p, ok := patch.(model.CardPatch)
	if !ok {
		return model.Card{}, ErrBadPatch
	}
	c := model.Card{ID: id}
	p.Apply(&c)
	list, found := r.s.lists.Get(c.ListID)
	if !found {
		return model.Card{}, ErrMissingParent
	}
	if c.BoardID == "" {
		c.BoardID = list.BoardID
	}
	return c, nil
}

func (r cardReducer) remove(id string) bool { return r.s.removeCard(id) }

func (r cardReducer) drop(id string) { r.s.cards.Delete(id) }

func (r cardReducer) rename(oldID, newID string) {
	c, ok := r.s.cards.Get(oldID)
	if !ok {
		return
	}
	c.ID = newID
	c.IsPersisted = true
	r.s.cards.Rename(oldID, c)
}

// move covers both same-list reordering and a cross-list move. The foreign
// key rewrite and the fresh position land in one Put, so no intermediate
// state is observable.
func (r cardReducer) move(id, parentID string, index int) error {
	c, ok := r.s.cards.Get(id)
	if !ok {
		return ErrRowNotFound
	}
	list, found := r.s.lists.Get(parentID)
	if !found {
		return ErrMissingParent
	}
	sibs := r.s.cardsByList.ChildrenOf(parentID)
	if c.ListID == parentID && indexExcluding(sibs, id) == index {
		return nil
	}
	ordered := withoutID(sibs, id)
	c.ListID = parentID
	c.BoardID = list.BoardID
	placeAt(ordered, c, index,
		func(x *model.Card, p float64) { x.Position = p },
		positionsOf(ordered, func(x model.Card) float64 { return x.Position }),
		r.s.cards.Put)
	return nil
}
