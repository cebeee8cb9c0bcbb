package model

type Label struct {
	ID       string  `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID  string  `json:"boardId" gorm:"type:uuid;not null;index"`
	Position float64 `json:"position" gorm:"not null"`
	Name     string  `json:"name"`
	Color    string  `json:"color" gorm:"not null"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`
}

func (l Label) EntityID() string { return l.ID }

type LabelPatch struct {
	BoardID  *string  `json:"boardId,omitempty"`
	Position *float64 `json:"position,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Color    *string  `json:"color,omitempty" binding:"omitempty,min=1"`
}

func (p LabelPatch) Apply(l *Label) {
	if p.BoardID != nil {
		l.BoardID = *p.BoardID
	}
	if p.Position != nil {
		l.Position = *p.Position
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
}
