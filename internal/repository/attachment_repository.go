package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create adds a new attachment to the database
func (r *AttachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// GetByID retrieves an attachment by its ID
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*model.Attachment, error) {
	var attachment model.Attachment
	result := r.db.WithContext(ctx).First(&attachment, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, result.Error
	}
	return &attachment, nil
}

// GetByCardID retrieves all attachments on a card
func (r *AttachmentRepository) GetByCardID(ctx context.Context, cardID string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	result := r.db.WithContext(ctx).Where("card_id = ?", cardID).Find(&attachments)
	if result.Error != nil {
		return nil, result.Error
	}
	return attachments, nil
}

// Update updates an existing attachment
func (r *AttachmentRepository) Update(ctx context.Context, attachment *model.Attachment) error {
	result := r.db.WithContext(ctx).Save(attachment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

// Delete removes an attachment by its ID
func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
