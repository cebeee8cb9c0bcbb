package store_test

import (
	"testing"

	"planboard/internal/event"
	"planboard/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestFilteredView_UserFilterSelectsAssignedCards(t *testing.T) {
	// Arrange: A(user=u1), B(user=u2), C(no users)
	s := seedBoard(t)
	pushCard(s, "A", "l1", 65536)
	pushCard(s, "B", "l1", 131072)
	pushCard(s, "C", "l1", 196608)
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "A", Patch: model.CardPatch{UserIDs: idsp("u1")}})
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "B", Patch: model.CardPatch{UserIDs: idsp("u2")}})

	// Act
	s.Dispatch(event.LocalUpdate{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{
		FilterUserIDs: idsp("u1"),
	}})

	// Assert
	assert.Equal(t, []string{"A"}, cardIDs(s.FilteredCardsOfList("l1")))
	// Underlying rows are untouched by filter state.
	assert.Equal(t, []string{"A", "B", "C"}, cardIDs(s.CardsOfList("l1")))
}

func TestFilteredView_TaskAssigneeCountsTowardUserFilter(t *testing.T) {
	// Arrange: the card has no direct member, only a task assignee
	s := seedBoard(t)
	pushCard(s, "A", "l1", 65536)
	pushCard(s, "B", "l1", 131072)
	s.Dispatch(event.PushUpsert{Entity: model.KindTask, ID: "t1", Patch: model.TaskPatch{
		CardID: strp("A"), Name: strp("review"), Position: f64p(65536), UserIDs: idsp("u1"),
	}})
	s.Dispatch(event.LocalUpdate{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{
		FilterUserIDs: idsp("u1"),
	}})

	// Act / Assert
	assert.Equal(t, []string{"A"}, cardIDs(s.FilteredCardsOfList("l1")))
}

func TestFilteredView_BothDimensionsMustMatch(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	pushCard(s, "A", "l1", 65536)
	pushCard(s, "B", "l1", 131072)
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "A", Patch: model.CardPatch{
		UserIDs: idsp("u1"), LabelIDs: idsp("lb1"),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "B", Patch: model.CardPatch{
		UserIDs: idsp("u1"),
	}})

	// Act
	s.Dispatch(event.LocalUpdate{Entity: model.KindBoard, ID: "b1", Patch: model.BoardPatch{
		FilterUserIDs:  idsp("u1"),
		FilterLabelIDs: idsp("lb1"),
	}})

	// Assert: B matches the user dimension but not the label dimension
	assert.Equal(t, []string{"A"}, cardIDs(s.FilteredCardsOfList("l1")))
}

func TestFilteredView_EmptyFilterImposesNoConstraint(t *testing.T) {
	// Arrange
	s := seedBoard(t)
	pushCard(s, "A", "l1", 65536)
	pushCard(s, "B", "l1", 131072)

	// Act / Assert
	assert.Equal(t, []string{"A", "B"}, cardIDs(s.FilteredCardsOfList("l1")))
}
