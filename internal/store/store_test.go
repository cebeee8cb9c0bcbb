package store_test

import (
	"testing"

	"planboard/internal/event"
	"planboard/internal/model"
	"planboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(v string) *string    { return &v }
func f64p(v float64) *float64  { return &v }
func idsp(v ...string) *[]string { return &v }

// seedBoard builds a store holding one confirmed board with one list.
func seedBoard(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	s.Dispatch(event.PushUpsert{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{
		Name:     strp("Main"),
		Position: f64p(65536),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindList, ID: "l1", Patch: model.ListPatch{
		BoardID:  strp("b1"),
		Name:     strp("Todo"),
		Position: f64p(65536),
	}})
	return s
}

func TestDispatch_UpsertMergesOnlyPresentFields(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		ListID:      strp("l1"),
		Name:        strp("Fix bug"),
		Description: strp("steps to reproduce"),
		Position:    f64p(65536),
	}})

	// Act: a second upsert carrying only a name
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		Name: strp("Fix bug for real"),
	}})

	// Assert: absent fields survive the merge
	c, ok := s.Card("c1")
	require.True(t, ok)
	assert.Equal(t, "Fix bug for real", c.Name)
	assert.Equal(t, "steps to reproduce", c.Description)
	assert.Equal(t, "l1", c.ListID)
	assert.Equal(t, "b1", c.BoardID)
	assert.True(t, c.IsPersisted)
}

func TestDispatch_MissingParentDropsEventWhole(t *testing.T) {
	// Arrange
	s := seedBoard(t)

	// Act: card referencing a list the store has never seen
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		ListID: strp("no-such-list"),
		Name:   strp("orphan"),
	}})

	// Assert
	_, ok := s.Card("c1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.DroppedEvents())
}

func TestDispatch_PushUpsertIsIdempotent(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	push := event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		ListID:   strp("l1"),
		Name:     strp("Fix bug"),
		Position: f64p(65536),
		UserIDs:  idsp("u1"),
	}}

	// Act
	s.Dispatch(push)
	once, _ := s.Card("c1")
	onceOrder := s.CardsOfList("l1")
	s.Dispatch(push)

	// Assert
	twice, _ := s.Card("c1")
	assert.Equal(t, once, twice)
	assert.Equal(t, onceOrder, s.CardsOfList("l1"))
}

func TestConfirmCreate_RewritesEveryReference(t *testing.T) {
	// Arrange: list created optimistically, card created under it before the
	// list confirmation arrives
	s := seedBoard(t)
	localID := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindList, LocalID: localID, Patch: model.ListPatch{
		BoardID:  strp("b1"),
		Name:     strp("Backlog"),
		Position: f64p(131072),
	}})
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: model.NewLocalID(), Patch: model.CardPatch{
		ListID:   strp(localID),
		Name:     strp("Fix bug"),
		Position: f64p(65536),
	}})

	// Act
	s.Dispatch(event.ServerConfirmCreate{Entity: model.KindList, LocalID: localID, ID: "srv-9", Patch: model.ListPatch{
		BoardID:  strp("b1"),
		Name:     strp("Backlog"),
		Position: f64p(131072),
	}})

	// Assert: the provisional row is gone and the card follows the new id
	_, ok := s.List(localID)
	assert.False(t, ok)
	confirmed, ok := s.List("srv-9")
	require.True(t, ok)
	assert.True(t, confirmed.IsPersisted)

	cards := s.CardsOfList("srv-9")
	require.Len(t, cards, 1)
	assert.Equal(t, "srv-9", cards[0].ListID)
	assert.Empty(t, s.CardsOfList(localID))
}

func TestConfirmCreate_PushWonTheRace(t *testing.T) {
	// Arrange: the push for the confirmed entity lands first
	s := seedBoard(t)
	localID := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindList, LocalID: localID, Patch: model.ListPatch{
		BoardID: strp("b1"), Name: strp("Backlog"), Position: f64p(131072),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindList, ID: "srv-9", Patch: model.ListPatch{
		BoardID: strp("b1"), Name: strp("Backlog (renamed elsewhere)"), Position: f64p(131072),
	}})

	// Act: the straggling confirm degrades to a merge
	s.Dispatch(event.ServerConfirmCreate{Entity: model.KindList, LocalID: localID, ID: "srv-9"})

	// Assert: one row, push data intact, provisional gone
	_, ok := s.List(localID)
	assert.False(t, ok)
	l, ok := s.List("srv-9")
	require.True(t, ok)
	assert.Equal(t, "Backlog (renamed elsewhere)", l.Name)
	assert.Len(t, s.ListsOfBoard("b1"), 2)
}

func TestConfirmCreate_KeepsOrderAmongEqualPositions(t *testing.T) {
	// Arrange: two optimistic cards sharing one position; the first was
	// created first and sorts first by insertion
	s := seedBoard(t)
	first := model.NewLocalID()
	second := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: first, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("first"), Position: f64p(65536),
	}})
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: second, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("second"), Position: f64p(65536),
	}})

	// Act
	s.Dispatch(event.ServerConfirmCreate{Entity: model.KindCard, LocalID: first, ID: "srv-1"})

	// Assert: the confirmed row keeps its rank, it does not jump behind the
	// still-provisional sibling
	cards := s.CardsOfList("l1")
	require.Len(t, cards, 2)
	assert.Equal(t, "srv-1", cards[0].ID)
	assert.Equal(t, second, cards[1].ID)
}

func TestConfirmCreate_AfterLocalDeleteIsNoop(t *testing.T) {
	// Arrange: the provisional row is deleted before the server answers
	s := seedBoard(t)
	localID := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: localID, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("oops"), Position: f64p(65536),
	}})
	s.Dispatch(event.LocalDelete{Entity: model.KindCard, ID: localID})

	// Act
	s.Dispatch(event.ServerConfirmCreate{Entity: model.KindCard, LocalID: localID, ID: "srv-1", Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("oops"), Position: f64p(65536),
	}})

	// Assert: nothing to reconcile against, nothing appears
	_, ok := s.Card("srv-1")
	assert.False(t, ok)
	assert.Empty(t, s.CardsOfList("l1"))
	assert.Zero(t, s.DroppedEvents())
}

func TestServerReject_RollsBackProvisionalSubtree(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	localCard := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: localCard, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("Fix bug"), Position: f64p(65536),
	}})
	localTask := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindTask, LocalID: localTask, Patch: model.TaskPatch{
		CardID: strp(localCard), Name: strp("step one"), Position: f64p(65536),
	}})

	// Act
	s.Dispatch(event.ServerReject{Entity: model.KindCard, LocalID: localCard, Reason: "not allowed"})

	// Assert
	_, ok := s.Card(localCard)
	assert.False(t, ok)
	_, ok = s.Task(localTask)
	assert.False(t, ok)
}

func TestLocalCreate_RowStartsUnpersisted(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	localID := model.NewLocalID()

	// Act
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: localID, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("draft"), Position: f64p(65536),
	}})

	// Assert
	c, ok := s.Card(localID)
	require.True(t, ok)
	assert.False(t, c.IsPersisted)
	assert.True(t, model.IsLocalID(c.ID))
}
