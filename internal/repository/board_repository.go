package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create adds a new board to the database
func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// GetByID retrieves a board by its ID
func (r *BoardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	var board model.Board
	result := r.db.WithContext(ctx).First(&board, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, result.Error
	}
	return &board, nil
}

// GetForUser retrieves every board the user owns or is a member of
func (r *BoardRepository) GetForUser(ctx context.Context, userID string) ([]model.Board, error) {
	var boards []model.Board
	result := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (SELECT board_id FROM memberships WHERE user_id = ?)", userID, userID).
		Order("position").
		Find(&boards)
	if result.Error != nil {
		return nil, result.Error
	}
	return boards, nil
}

// Update updates an existing board
func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	result := r.db.WithContext(ctx).Save(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Delete removes a board and everything under it in one transaction
func (r *BoardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board model.Board
		if err := tx.First(&board, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}

		if err := tx.Exec(
			"DELETE FROM task_memberships WHERE task_id IN (SELECT id FROM tasks WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?))", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM tasks WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM attachments WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM comments WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM card_memberships WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM card_labels WHERE card_id IN (SELECT id FROM cards WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Card{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.List{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Label{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&board).Error
	})
}
