package model

import "time"

// Timer tracks time spent on a card. Total accumulates stopped time in
// seconds; StartedAt is set while the timer is running.
type Timer struct {
	Total     int64      `json:"total"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

type Card struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID     string     `json:"boardId" gorm:"type:uuid;not null;index"`
	ListID      string     `json:"listId" gorm:"type:uuid;not null;index"`
	Position    float64    `json:"position" gorm:"not null"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Timer       *Timer     `json:"timer,omitempty" gorm:"embedded;embeddedPrefix:timer_"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`

	// Non-owning associations, kept as paired id lists. The server assembles
	// them from the join tables below.
	UserIDs  []string `json:"userIds" gorm:"-"`
	LabelIDs []string `json:"labelIds" gorm:"-"`
}

func (c Card) EntityID() string { return c.ID }

type CardPatch struct {
	BoardID     *string     `json:"boardId,omitempty"`
	ListID      *string     `json:"listId,omitempty"`
	Position    *float64    `json:"position,omitempty"`
	Name        *string     `json:"name,omitempty" binding:"omitempty,min=1"`
	Description *string     `json:"description,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Timer       *Timer      `json:"timer,omitempty"`
	UserIDs     *[]string   `json:"userIds,omitempty"`
	LabelIDs    *[]string   `json:"labelIds,omitempty"`
}

func (p CardPatch) Apply(c *Card) {
	if p.BoardID != nil {
		c.BoardID = *p.BoardID
	}
	if p.ListID != nil {
		c.ListID = *p.ListID
	}
	if p.Position != nil {
		c.Position = *p.Position
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.DueDate != nil {
		c.DueDate = p.DueDate
	}
	if p.Timer != nil {
		c.Timer = p.Timer
	}
	if p.UserIDs != nil {
		c.UserIDs = *p.UserIDs
	}
	if p.LabelIDs != nil {
		c.LabelIDs = *p.LabelIDs
	}
}

// CardMembership and CardLabel are the server-side join rows behind
// Card.UserIDs and Card.LabelIDs.
type CardMembership struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	CardID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_card_user"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_card_user"`
}

type CardLabel struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	CardID  string `gorm:"type:uuid;not null;index;uniqueIndex:idx_card_label"`
	LabelID string `gorm:"type:uuid;not null;uniqueIndex:idx_card_label"`
}
