package model

import "time"

type User struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	Name           string    `json:"name" gorm:"not null"`
	AvatarURL      string    `json:"avatarUrl"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

func (u User) EntityID() string { return u.ID }

type UserPatch struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Name      *string `json:"name,omitempty" binding:"omitempty,min=2"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}
