package model

import "time"

// Comment is a card-owned discussion entry. Comments carry no position;
// they read in creation order.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CardID    string    `json:"cardId" gorm:"type:uuid;not null;index"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

func (c Comment) EntityID() string { return c.ID }

type CommentPatch struct {
	CardID *string `json:"cardId,omitempty"`
	UserID *string `json:"userId,omitempty"`
	Text   *string `json:"text,omitempty" binding:"omitempty,min=1"`
}

func (p CommentPatch) Apply(c *Comment) {
	if p.CardID != nil {
		c.CardID = *p.CardID
	}
	if p.UserID != nil {
		c.UserID = *p.UserID
	}
	if p.Text != nil {
		c.Text = *p.Text
	}
}
