package model

import "time"

type Board struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID string    `json:"projectId" gorm:"type:uuid;index"`
	OwnerID   string    `json:"ownerId" gorm:"type:uuid;not null"`
	Position  float64   `json:"position" gorm:"not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Client-side only. IsPersisted is false while the row still lives under
	// a provisional id; the filter sets are per-session view state and never
	// leave the client.
	IsPersisted    bool     `json:"isPersisted,omitempty" gorm:"-"`
	FilterUserIDs  []string `json:"filterUserIds,omitempty" gorm:"-"`
	FilterLabelIDs []string `json:"filterLabelIds,omitempty" gorm:"-"`
}

func (b Board) EntityID() string { return b.ID }

// BoardPatch carries the attributes present in an update or creation request.
// Nil means the attribute was absent and must be left untouched on merge.
type BoardPatch struct {
	ProjectID      *string   `json:"projectId,omitempty"`
	Position       *float64  `json:"position,omitempty"`
	Name           *string   `json:"name,omitempty" binding:"omitempty,min=1"`
	FilterUserIDs  *[]string `json:"filterUserIds,omitempty"`
	FilterLabelIDs *[]string `json:"filterLabelIds,omitempty"`
}

func (p BoardPatch) Apply(b *Board) {
	if p.ProjectID != nil {
		b.ProjectID = *p.ProjectID
	}
	if p.Position != nil {
		b.Position = *p.Position
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.FilterUserIDs != nil {
		b.FilterUserIDs = *p.FilterUserIDs
	}
	if p.FilterLabelIDs != nil {
		b.FilterLabelIDs = *p.FilterLabelIDs
	}
}
