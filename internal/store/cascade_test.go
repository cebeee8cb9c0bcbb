package store_test

import (
	"testing"

	"planboard/internal/event"
	"planboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascade_BoardDeleteLeavesNoDescendants(t *testing.T) {
	// Arrange: board -> 2 lists -> cards -> tasks/attachments, plus a label
	// and a membership
	s := seedBoard(t)
	s.Dispatch(event.PushUpsert{Entity: model.KindUser, ID: "u1", Patch: model.UserPatch{Name: strp("Alice")}})
	s.Dispatch(event.PushUpsert{Entity: model.KindList, ID: "l2", Patch: model.ListPatch{
		BoardID: strp("b1"), Name: strp("Doing"), Position: f64p(131072),
	}})
	pushCard(s, "c1", "l1", 65536)
	pushCard(s, "c2", "l2", 65536)
	s.Dispatch(event.PushUpsert{Entity: model.KindTask, ID: "t1", Patch: model.TaskPatch{
		CardID: strp("c1"), Name: strp("subtask"), Position: f64p(65536),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindAttachment, ID: "a1", Patch: model.AttachmentPatch{
		CardID: strp("c1"), Name: strp("screenshot"), URL: strp("https://files/1.png"),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindLabel, ID: "lb1", Patch: model.LabelPatch{
		BoardID: strp("b1"), Color: strp("berry-red"), Position: f64p(65536),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindMembership, ID: "m1", Patch: model.MembershipPatch{
		BoardID: strp("b1"), UserID: strp("u1"), Role: strp(model.RoleEditor),
	}})

	// Act
	s.Dispatch(event.PushDelete{Entity: model.KindBoard, ID: "b1"})

	// Assert: every row whose ownership chain passes through the board is
	// gone; the user survives, it is referenced, not owned
	for id, gone := range map[string]func(string) bool{
		"l1": func(id string) bool { _, ok := s.List(id); return !ok },
		"l2": func(id string) bool { _, ok := s.List(id); return !ok },
		"c1": func(id string) bool { _, ok := s.Card(id); return !ok },
		"c2": func(id string) bool { _, ok := s.Card(id); return !ok },
		"t1": func(id string) bool { _, ok := s.Task(id); return !ok },
		"a1": func(id string) bool { _, ok := s.Attachment(id); return !ok },
		"lb1": func(id string) bool { _, ok := s.Label(id); return !ok },
		"m1": func(id string) bool { _, ok := s.Membership(id); return !ok },
	} {
		assert.True(t, gone(id), "%s should have been cascaded", id)
	}
	_, ok := s.Board("b1")
	assert.False(t, ok)
	_, ok = s.User("u1")
	assert.True(t, ok)
}

func TestCascade_ListDeleteRemovesCardsAndTheirChildren(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	pushCard(s, "c1", "l1", 65536)
	s.Dispatch(event.PushUpsert{Entity: model.KindTask, ID: "t1", Patch: model.TaskPatch{
		CardID: strp("c1"), Name: strp("subtask"), Position: f64p(65536),
	}})

	// Act
	s.Dispatch(event.LocalDelete{Entity: model.KindList, ID: "l1"})

	// Assert
	_, ok := s.Card("c1")
	assert.False(t, ok)
	_, ok = s.Task("t1")
	assert.False(t, ok)

	// The confirmation repeating the cascade is a harmless no-op.
	s.Dispatch(event.ServerConfirmDelete{Entity: model.KindList, ID: "l1"})
	assert.Zero(t, s.DroppedEvents())
}

func TestCascade_LabelDeleteInvalidatesAssociations(t *testing.T) {
	// Arrange: a card tagged with the label, and the label active in the
	// board filter
	s := seedBoard(t)
	s.Dispatch(event.PushUpsert{Entity: model.KindLabel, ID: "lb1", Patch: model.LabelPatch{
		BoardID: strp("b1"), Color: strp("lagoon-blue"), Position: f64p(65536),
	}})
	pushCard(s, "c1", "l1", 65536)
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		LabelIDs: idsp("lb1"),
	}})
	s.Dispatch(event.LocalUpdate{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{
		FilterLabelIDs: idsp("lb1"),
	}})

	// Act
	s.Dispatch(event.PushDelete{Entity: model.KindLabel, ID: "lb1"})

	// Assert
	c, ok := s.Card("c1")
	require.True(t, ok)
	assert.Empty(t, c.LabelIDs)
	b, _ := s.Board("b1")
	assert.Empty(t, b.FilterLabelIDs)
}

func TestReconnect_StoreEqualsSnapshotExactly(t *testing.T) {
	// Arrange: confirmed state plus a provisional card that the server
	// never saw
	s := seedBoard(t)
	pushCard(s, "stale", "l1", 65536)
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: model.NewLocalID(), Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("unconfirmed"), Position: f64p(131072),
	}})

	// Act
	s.Dispatch(event.ConnectionReset{})
	s.Dispatch(event.FullStateReplace{Snapshot: event.Snapshot{
		Boards: []model.Board{{ID: "b1", Name: "Main", Position: 65536}},
		Lists:  []model.List{{ID: "l1", BoardID: "b1", Name: "Todo", Position: 65536}},
		Cards: []model.Card{
			{ID: "fresh", BoardID: "b1", ListID: "l1", Name: "from server", Position: 65536},
		},
	}})

	// Assert: exactly the snapshot's ids, nothing more
	_, ok := s.Card("stale")
	assert.False(t, ok)
	cards := s.CardsOfList("l1")
	require.Len(t, cards, 1)
	assert.Equal(t, "fresh", cards[0].ID)
	assert.True(t, cards[0].IsPersisted)
	b, ok := s.Board("b1")
	require.True(t, ok)
	assert.True(t, b.IsPersisted)
}
