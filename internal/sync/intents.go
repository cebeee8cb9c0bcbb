package sync

import (
	"context"
	"time"

	"planboard/internal/event"
	"planboard/internal/model"
	"planboard/internal/store"
)

// Typed intents for the interaction layer. Each commits the optimistic
// mutation via the queue and resolves against the server in the background.
// Store reads (position allocation, association lists) happen on the queue
// goroutine, so intents never race the dispatcher. Create intents return the
// provisional id so the caller can track the row until confirmation swaps it.

func appendAfter(last float64, empty bool) float64 {
	if empty {
		return store.PositionGap
	}
	return last + store.PositionGap
}

func (e *Engine) CreateBoard(ctx context.Context, projectID string, patch model.BoardPatch) string {
	patch.ProjectID = &projectID
	return e.submitCreate(ctx, model.KindBoard, "/boards", func() any {
		if patch.Position == nil {
			boards := e.store.BoardsOfProject(projectID)
			pos := appendAfter(lastBoardPos(boards), len(boards) == 0)
			patch.Position = &pos
		}
		return patch
	})
}

func (e *Engine) UpdateBoard(ctx context.Context, id string, patch model.BoardPatch) {
	e.submitUpdate(ctx, model.KindBoard, id, "/boards/"+id, patch)
}

func (e *Engine) DeleteBoard(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindBoard, id, "/boards/"+id)
}

func (e *Engine) MoveBoard(ctx context.Context, id, projectID string, index int) {
	e.submitMove(ctx, model.KindBoard, id, projectID, index, "/boards/"+id+"/move", func() (float64, bool) {
		b, ok := e.store.Board(id)
		return b.Position, ok
	})
}

func (e *Engine) CreateList(ctx context.Context, boardID string, patch model.ListPatch) string {
	patch.BoardID = &boardID
	return e.submitCreate(ctx, model.KindList, "/lists", func() any {
		if patch.Position == nil {
			lists := e.store.ListsOfBoard(boardID)
			pos := appendAfter(lastListPos(lists), len(lists) == 0)
			patch.Position = &pos
		}
		return patch
	})
}

func (e *Engine) UpdateList(ctx context.Context, id string, patch model.ListPatch) {
	e.submitUpdate(ctx, model.KindList, id, "/lists/"+id, patch)
}

func (e *Engine) DeleteList(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindList, id, "/lists/"+id)
}

func (e *Engine) MoveList(ctx context.Context, id, boardID string, index int) {
	e.submitMove(ctx, model.KindList, id, boardID, index, "/lists/"+id+"/move", func() (float64, bool) {
		l, ok := e.store.List(id)
		return l.Position, ok
	})
}

func (e *Engine) CreateCard(ctx context.Context, listID string, patch model.CardPatch) string {
	patch.ListID = &listID
	return e.submitCreate(ctx, model.KindCard, "/cards", func() any {
		if patch.Position == nil {
			cards := e.store.CardsOfList(listID)
			pos := appendAfter(lastCardPos(cards), len(cards) == 0)
			patch.Position = &pos
		}
		return patch
	})
}

func (e *Engine) UpdateCard(ctx context.Context, id string, patch model.CardPatch) {
	e.submitUpdate(ctx, model.KindCard, id, "/cards/"+id, patch)
}

func (e *Engine) DeleteCard(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindCard, id, "/cards/"+id)
}

func (e *Engine) MoveCard(ctx context.Context, id, listID string, index int) {
	e.submitMove(ctx, model.KindCard, id, listID, index, "/cards/"+id+"/move", func() (float64, bool) {
		c, ok := e.store.Card(id)
		return c.Position, ok
	})
}

func (e *Engine) CreateTask(ctx context.Context, cardID string, patch model.TaskPatch) string {
	patch.CardID = &cardID
	return e.submitCreate(ctx, model.KindTask, "/tasks", func() any {
		if patch.Position == nil {
			tasks := e.store.TasksOfCard(cardID)
			pos := appendAfter(lastTaskPos(tasks), len(tasks) == 0)
			patch.Position = &pos
		}
		return patch
	})
}

func (e *Engine) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) {
	e.submitUpdate(ctx, model.KindTask, id, "/tasks/"+id, patch)
}

func (e *Engine) DeleteTask(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindTask, id, "/tasks/"+id)
}

func (e *Engine) MoveTask(ctx context.Context, id, cardID string, index int) {
	e.submitMove(ctx, model.KindTask, id, cardID, index, "/tasks/"+id+"/move", func() (float64, bool) {
		t, ok := e.store.Task(id)
		return t.Position, ok
	})
}

func (e *Engine) CreateLabel(ctx context.Context, boardID string, patch model.LabelPatch) string {
	patch.BoardID = &boardID
	return e.submitCreate(ctx, model.KindLabel, "/labels", func() any {
		if patch.Position == nil {
			labels := e.store.LabelsOfBoard(boardID)
			pos := appendAfter(lastLabelPos(labels), len(labels) == 0)
			patch.Position = &pos
		}
		return patch
	})
}

func (e *Engine) UpdateLabel(ctx context.Context, id string, patch model.LabelPatch) {
	e.submitUpdate(ctx, model.KindLabel, id, "/labels/"+id, patch)
}

func (e *Engine) DeleteLabel(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindLabel, id, "/labels/"+id)
}

func (e *Engine) CreateAttachment(ctx context.Context, cardID string, patch model.AttachmentPatch) string {
	patch.CardID = &cardID
	return e.submitCreate(ctx, model.KindAttachment, "/attachments", func() any { return patch })
}

func (e *Engine) UpdateAttachment(ctx context.Context, id string, patch model.AttachmentPatch) {
	e.submitUpdate(ctx, model.KindAttachment, id, "/attachments/"+id, patch)
}

func (e *Engine) DeleteAttachment(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindAttachment, id, "/attachments/"+id)
}

func (e *Engine) CreateComment(ctx context.Context, cardID string, patch model.CommentPatch) string {
	patch.CardID = &cardID
	return e.submitCreate(ctx, model.KindComment, "/comments", func() any { return patch })
}

func (e *Engine) UpdateComment(ctx context.Context, id string, patch model.CommentPatch) {
	e.submitUpdate(ctx, model.KindComment, id, "/comments/"+id, patch)
}

func (e *Engine) DeleteComment(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindComment, id, "/comments/"+id)
}

func (e *Engine) CreateMembership(ctx context.Context, boardID, userID, role string) string {
	return e.submitCreate(ctx, model.KindMembership, "/memberships", func() any {
		return model.MembershipPatch{
			BoardID: &boardID,
			UserID:  &userID,
			Role:    &role,
		}
	})
}

func (e *Engine) UpdateMembership(ctx context.Context, id string, patch model.MembershipPatch) {
	e.submitUpdate(ctx, model.KindMembership, id, "/memberships/"+id, patch)
}

func (e *Engine) DeleteMembership(ctx context.Context, id string) {
	e.submitDelete(ctx, model.KindMembership, id, "/memberships/"+id)
}

// Membership and label association edits ride the ordinary card/task update;
// the server reconciles its join tables from the id lists.

func (e *Engine) AddCardMember(ctx context.Context, cardID, userID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok || contains(c.UserIDs, userID) {
			return nil
		}
		ids := appendCopy(c.UserIDs, userID)
		return model.CardPatch{UserIDs: &ids}
	})
}

func (e *Engine) RemoveCardMember(ctx context.Context, cardID, userID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok || !contains(c.UserIDs, userID) {
			return nil
		}
		ids := removeCopy(c.UserIDs, userID)
		return model.CardPatch{UserIDs: &ids}
	})
}

func (e *Engine) AddCardLabel(ctx context.Context, cardID, labelID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok || contains(c.LabelIDs, labelID) {
			return nil
		}
		ids := appendCopy(c.LabelIDs, labelID)
		return model.CardPatch{LabelIDs: &ids}
	})
}

func (e *Engine) RemoveCardLabel(ctx context.Context, cardID, labelID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok || !contains(c.LabelIDs, labelID) {
			return nil
		}
		ids := removeCopy(c.LabelIDs, labelID)
		return model.CardPatch{LabelIDs: &ids}
	})
}

func (e *Engine) AddTaskMember(ctx context.Context, taskID, userID string) {
	e.submitBuiltUpdate(ctx, model.KindTask, taskID, "/tasks/"+taskID, func() any {
		t, ok := e.store.Task(taskID)
		if !ok || contains(t.UserIDs, userID) {
			return nil
		}
		ids := appendCopy(t.UserIDs, userID)
		return model.TaskPatch{UserIDs: &ids}
	})
}

func (e *Engine) RemoveTaskMember(ctx context.Context, taskID, userID string) {
	e.submitBuiltUpdate(ctx, model.KindTask, taskID, "/tasks/"+taskID, func() any {
		t, ok := e.store.Task(taskID)
		if !ok || !contains(t.UserIDs, userID) {
			return nil
		}
		ids := removeCopy(t.UserIDs, userID)
		return model.TaskPatch{UserIDs: &ids}
	})
}

// SetBoardFilter is view state, board-scoped and session-local; it never
// reaches the server.
func (e *Engine) SetBoardFilter(boardID string, userIDs, labelIDs []string) {
	e.Enqueue(event.LocalUpdate{Entity: model.KindBoard, ID: boardID, Patch: model.BoardPatch{
		FilterUserIDs:  &userIDs,
		FilterLabelIDs: &labelIDs,
	}})
}

// StartCardTimer begins tracking time on a card. Already-running timers are
// left alone.
func (e *Engine) StartCardTimer(ctx context.Context, cardID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok {
			return nil
		}
		t := model.Timer{}
		if c.Timer != nil {
			t = *c.Timer
		}
		if t.StartedAt != nil {
			return nil
		}
		now := time.Now()
		t.StartedAt = &now
		return model.CardPatch{Timer: &t}
	})
}

// StopCardTimer folds the running span into the accumulated total.
func (e *Engine) StopCardTimer(ctx context.Context, cardID string) {
	e.submitBuiltUpdate(ctx, model.KindCard, cardID, "/cards/"+cardID, func() any {
		c, ok := e.store.Card(cardID)
		if !ok || c.Timer == nil || c.Timer.StartedAt == nil {
			return nil
		}
		t := *c.Timer
		t.Total += int64(time.Since(*t.StartedAt).Seconds())
		t.StartedAt = nil
		return model.CardPatch{Timer: &t}
	})
}

func lastBoardPos(rows []model.Board) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Position
}

func lastListPos(rows []model.List) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Position
}

func lastCardPos(rows []model.Card) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Position
}

func lastTaskPos(rows []model.Task) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Position
}

func lastLabelPos(rows []model.Label) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Position
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func appendCopy(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

func removeCopy(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
