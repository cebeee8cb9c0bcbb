package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create adds a new card to the database
func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID retrieves a card by its ID with its member and label ids attached
func (r *CardRepository) GetByID(ctx context.Context, id string) (*model.Card, error) {
	var card model.Card
	result := r.db.WithContext(ctx).First(&card, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, result.Error
	}
	if err := r.loadAssociations(ctx, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByListID retrieves all cards in a list ordered by position
func (r *CardRepository) GetByListID(ctx context.Context, listID string) ([]model.Card, error) {
	var cards []model.Card
	result := r.db.WithContext(ctx).Where("list_id = ?", listID).Order("position").Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	for i := range cards {
		if err := r.loadAssociations(ctx, &cards[i]); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// Update updates an existing card
func (r *CardRepository) Update(ctx context.Context, card *model.Card) error {
	result := r.db.WithContext(ctx).Save(card)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Delete removes a card, its tasks, attachments and comments in one transaction
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card model.Card
		if err := tx.First(&card, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}

		if err := tx.Exec(
			"DELETE FROM task_memberships WHERE task_id IN (SELECT id FROM tasks WHERE card_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id).Delete(&model.CardMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id).Delete(&model.CardLabel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&card).Error
	})
}

// Move places the card in a list at the given position
func (r *CardRepository) Move(ctx context.Context, id, listID string, position float64) error {
	result := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"list_id": listID, "position": position})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// SetMembers replaces the card's member set with the given user ids
func (r *CardRepository) SetMembers(ctx context.Context, cardID string, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&model.CardMembership{}).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			row := model.CardMembership{ID: uuid.NewString(), CardID: cardID, UserID: userID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetLabels replaces the card's label set with the given label ids
func (r *CardRepository) SetLabels(ctx context.Context, cardID string, labelIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&model.CardLabel{}).Error; err != nil {
			return err
		}
		for _, labelID := range labelIDs {
			row := model.CardLabel{ID: uuid.NewString(), CardID: cardID, LabelID: labelID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CardRepository) loadAssociations(ctx context.Context, card *model.Card) error {
	card.UserIDs = []string{}
	card.LabelIDs = []string{}
	if err := r.db.WithContext(ctx).Model(&model.CardMembership{}).
		Where("card_id = ?", card.ID).
		Pluck("user_id", &card.UserIDs).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.CardLabel{}).
		Where("card_id = ?", card.ID).
		Pluck("label_id", &card.LabelIDs).Error
}
