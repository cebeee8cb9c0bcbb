package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create adds a new board membership to the database
func (r *MembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

// GetByID retrieves a membership by its ID
func (r *MembershipRepository) GetByID(ctx context.Context, id string) (*model.Membership, error) {
	var membership model.Membership
	result := r.db.WithContext(ctx).First(&membership, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, result.Error
	}
	return &membership, nil
}

// GetByBoardAndUser retrieves the membership linking a user to a board, or
// nil when the user is not a member
func (r *MembershipRepository) GetByBoardAndUser(ctx context.Context, boardID, userID string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByBoardID retrieves all memberships of a board
func (r *MembershipRepository) GetByBoardID(ctx context.Context, boardID string) ([]model.Membership, error) {
	var memberships []model.Membership
	result := r.db.WithContext(ctx).Where("board_id = ?", boardID).Find(&memberships)
	if result.Error != nil {
		return nil, result.Error
	}
	return memberships, nil
}

// Update updates an existing membership
func (r *MembershipRepository) Update(ctx context.Context, membership *model.Membership) error {
	result := r.db.WithContext(ctx).Save(membership)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// Delete removes a membership by its ID
func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Membership{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}
