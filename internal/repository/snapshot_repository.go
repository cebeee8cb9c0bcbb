package repository

import (
	"context"
	"errors"

	"planboard/internal/event"
	"planboard/internal/model"

	"gorm.io/gorm"
)

// SnapshotRepository assembles the full state of one board. The result is
// what reconnecting clients load before replaying live pushes.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// LoadBoard reads a board and everything under it in a single transaction so
// the snapshot is internally consistent.
func (r *SnapshotRepository) LoadBoard(ctx context.Context, boardID string) (*event.Snapshot, error) {
	var snap event.Snapshot

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board model.Board
		if err := tx.First(&board, "id = ?", boardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		snap.Boards = []model.Board{board}

		if err := tx.Where("board_id = ?", boardID).Order("position").Find(&snap.Lists).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Order("position").Find(&snap.Cards).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Order("position").Find(&snap.Labels).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Find(&snap.Memberships).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (SELECT id FROM cards WHERE board_id = ?)", boardID).
			Order("position").Find(&snap.Tasks).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (SELECT id FROM cards WHERE board_id = ?)", boardID).
			Find(&snap.Attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id IN (SELECT id FROM cards WHERE board_id = ?)", boardID).
			Order("created_at").Find(&snap.Comments).Error; err != nil {
			return err
		}

		// Comment authors may have left the board since; their user rows
		// still have to render.
		userIDs := []string{board.OwnerID}
		for _, m := range snap.Memberships {
			userIDs = append(userIDs, m.UserID)
		}
		for _, c := range snap.Comments {
			userIDs = append(userIDs, c.UserID)
		}
		if err := tx.Where("id IN ?", userIDs).Find(&snap.Users).Error; err != nil {
			return err
		}

		var cardMembers []model.CardMembership
		if err := tx.Where("card_id IN (SELECT id FROM cards WHERE board_id = ?)", boardID).
			Find(&cardMembers).Error; err != nil {
			return err
		}
		var cardLabels []model.CardLabel
		if err := tx.Where("card_id IN (SELECT id FROM cards WHERE board_id = ?)", boardID).
			Find(&cardLabels).Error; err != nil {
			return err
		}
		var taskMembers []model.TaskMembership
		if err := tx.Where("task_id IN (SELECT id FROM tasks WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?))", boardID).
			Find(&taskMembers).Error; err != nil {
			return err
		}

		memberOf := make(map[string][]string)
		for _, cm := range cardMembers {
			memberOf[cm.CardID] = append(memberOf[cm.CardID], cm.UserID)
		}
		labelOf := make(map[string][]string)
		for _, cl := range cardLabels {
			labelOf[cl.CardID] = append(labelOf[cl.CardID], cl.LabelID)
		}
		for i := range snap.Cards {
			snap.Cards[i].UserIDs = orEmpty(memberOf[snap.Cards[i].ID])
			snap.Cards[i].LabelIDs = orEmpty(labelOf[snap.Cards[i].ID])
		}

		assigneeOf := make(map[string][]string)
		for _, tm := range taskMembers {
			assigneeOf[tm.TaskID] = append(assigneeOf[tm.TaskID], tm.UserID)
		}
		for i := range snap.Tasks {
			snap.Tasks[i].UserIDs = orEmpty(assigneeOf[snap.Tasks[i].ID])
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
