package model

import "time"

type Attachment struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CardID    string    `json:"cardId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	IsCover   bool      `json:"isCover"`
	CreatedAt time.Time `json:"createdAt"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

func (a Attachment) EntityID() string { return a.ID }

type AttachmentPatch struct {
	CardID  *string `json:"cardId,omitempty"`
	Name    *string `json:"name,omitempty" binding:"omitempty,min=1"`
	URL     *string `json:"url,omitempty"`
	IsCover *bool   `json:"isCover,omitempty"`
}

func (p AttachmentPatch) Apply(a *Attachment) {
	if p.CardID != nil {
		a.CardID = *p.CardID
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.URL != nil {
		a.URL = *p.URL
	}
	if p.IsCover != nil {
		a.IsCover = *p.IsCover
	}
}
