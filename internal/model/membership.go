package model

import "time"

// Membership links a user to a board and defines edit rights.
type Membership struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID   string    `json:"boardId" gorm:"type:uuid;not null;index;uniqueIndex:idx_board_user"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_board_user"`
	Role      string    `json:"role" gorm:"not null;check:role IN ('viewer', 'editor')"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

func (m Membership) EntityID() string { return m.ID }

type MembershipPatch struct {
	BoardID *string `json:"boardId,omitempty"`
	UserID  *string `json:"userId,omitempty"`
	Role    *string `json:"role,omitempty" binding:"omitempty,oneof=viewer editor"`
}

func (p MembershipPatch) Apply(m *Membership) {
	if p.BoardID != nil {
		m.BoardID = *p.BoardID
	}
	if p.UserID != nil {
		m.UserID = *p.UserID
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
}
