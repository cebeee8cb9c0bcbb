package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// Create adds a new list to the database
func (r *ListRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// GetByID retrieves a list by its ID
func (r *ListRepository) GetByID(ctx context.Context, id string) (*model.List, error) {
	var list model.List
	result := r.db.WithContext(ctx).First(&list, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, result.Error
	}
	return &list, nil
}

// GetByBoardID retrieves all lists on a board ordered by position
func (r *ListRepository) GetByBoardID(ctx context.Context, boardID string) ([]model.List, error) {
	var lists []model.List
	result := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position").Find(&lists)
	if result.Error != nil {
		return nil, result.Error
	}
	return lists, nil
}

// Update updates an existing list
func (r *ListRepository) Update(ctx context.Context, list *model.List) error {
	result := r.db.WithContext(ctx).Save(list)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	return nil
}

// Delete removes a list and its cards in one transaction
func (r *ListRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list model.List
		if err := tx.First(&list, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListNotFound
			}
			return err
		}

		if err := tx.Exec(
			"DELETE FROM task_memberships WHERE task_id IN (SELECT id FROM tasks WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?))", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM tasks WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM attachments WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM comments WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM card_memberships WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM card_labels WHERE card_id IN (SELECT id FROM cards WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&model.Card{}).Error; err != nil {
			return err
		}
		return tx.Delete(&list).Error
	})
}

// Move sets the list's position on its board
func (r *ListRepository) Move(ctx context.Context, id string, position float64) error {
	result := r.db.WithContext(ctx).Model(&model.List{}).
		Where("id = ?", id).
		Update("position", position)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	return nil
}
