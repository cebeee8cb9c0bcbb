package model

type Task struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	CardID      string  `json:"cardId" gorm:"type:uuid;not null;index"`
	Position    float64 `json:"position" gorm:"not null"`
	Name        string  `json:"name" gorm:"not null"`
	IsCompleted bool    `json:"isCompleted"`

	IsPersisted bool `json:"isPersisted,omitempty" gorm:"-"`

	// Optional assignees; counted by the board's user filter alongside the
	// card's own members.
	UserIDs []string `json:"userIds" gorm:"-"`
}

func (t Task) EntityID() string { return t.ID }

type TaskPatch struct {
	CardID      *string   `json:"cardId,omitempty"`
	Position    *float64  `json:"position,omitempty"`
	Name        *string   `json:"name,omitempty" binding:"omitempty,min=1"`
	IsCompleted *bool     `json:"isCompleted,omitempty"`
	UserIDs     *[]string `json:"userIds,omitempty"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.CardID != nil {
		t.CardID = *p.CardID
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.UserIDs != nil {
		t.UserIDs = *p.UserIDs
	}
}

// TaskMembership is the server-side join row behind Task.UserIDs.
type TaskMembership struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	TaskID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_task_user"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_task_user"`
}
