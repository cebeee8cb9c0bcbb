package store_test

import (
	"testing"

	"planboard/internal/event"
	"planboard/internal/model"
	"planboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCard(t *testing.T) *store.Store {
	t.Helper()
	s := seedBoard(t)
	s.Dispatch(event.PushUpsert{Entity: model.KindCard, ID: "c1", Patch: model.CardPatch{
		ListID:   strp("l1"),
		Name:     strp("Fix bug"),
		Position: f64p(65536),
	}})
	return s
}

func TestComments_ReadInCreationOrder(t *testing.T) {
	// Arrange
	s := seedCard(t)

	// Act
	s.Dispatch(event.PushUpsert{Entity: model.KindComment, ID: "cm1", Patch: model.CommentPatch{
		CardID: strp("c1"), UserID: strp("u1"), Text: strp("looks wrong"),
	}})
	s.Dispatch(event.PushUpsert{Entity: model.KindComment, ID: "cm2", Patch: model.CommentPatch{
		CardID: strp("c1"), UserID: strp("u2"), Text: strp("fixed in a branch"),
	}})

	// Assert
	comments := s.CommentsOfCard("c1")
	require.Len(t, comments, 2)
	assert.Equal(t, "cm1", comments[0].ID)
	assert.Equal(t, "cm2", comments[1].ID)
	assert.Equal(t, "looks wrong", comments[0].Text)
}

func TestComments_RemovedWithTheirCard(t *testing.T) {
	// Arrange
	s := seedCard(t)
	s.Dispatch(event.PushUpsert{Entity: model.KindComment, ID: "cm1", Patch: model.CommentPatch{
		CardID: strp("c1"), UserID: strp("u1"), Text: strp("gone soon"),
	}})

	// Act
	s.Dispatch(event.PushDelete{Entity: model.KindCard, ID: "c1"})

	// Assert
	_, ok := s.Comment("cm1")
	assert.False(t, ok)
	assert.Empty(t, s.CommentsOfCard("c1"))
}

func TestComments_FollowConfirmedCardID(t *testing.T) {
	// Arrange: comment written on a card that is still provisional
	s := seedBoard(t)
	localCard := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindCard, LocalID: localCard, Patch: model.CardPatch{
		ListID: strp("l1"), Name: strp("Fix bug"), Position: f64p(65536),
	}})
	localComment := model.NewLocalID()
	s.Dispatch(event.LocalCreate{Entity: model.KindComment, LocalID: localComment, Patch: model.CommentPatch{
		CardID: strp(localCard), UserID: strp("u1"), Text: strp("on it"),
	}})

	// Act
	s.Dispatch(event.ServerConfirmCreate{Entity: model.KindCard, LocalID: localCard, ID: "srv-c1"})

	// Assert
	comment, ok := s.Comment(localComment)
	require.True(t, ok)
	assert.Equal(t, "srv-c1", comment.CardID)
	require.Len(t, s.CommentsOfCard("srv-c1"), 1)
	assert.Empty(t, s.CommentsOfCard(localCard))
}
