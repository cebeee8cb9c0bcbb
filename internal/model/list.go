package model

type List struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID     string  `json:"boardId" gorm:"type:uuid;not null;index"`
	Position    float64 `json:"position" gorm:"not null"`
	Name        string  `json:"name" gorm:"not null"`
	IsCollapsed bool    `json:"isCollapsed"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

func (l List) EntityID() string { return l.ID }

type ListPatch struct {
	BoardID     *string  `json:"boardId,omitempty"`
	Position    *float64 `json:"position,omitempty"`
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=1"`
	IsCollapsed *bool    `json:"isCollapsed,omitempty"`
}

func (p ListPatch) Apply(l *List) {
	if p.BoardID != nil {
		l.BoardID = *p.BoardID
	}
	if p.Position != nil {
		l.Position = *p.Position
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.IsCollapsed != nil {
		l.IsCollapsed = *p.IsCollapsed
	}
}
