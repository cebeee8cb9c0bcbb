package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID with its assignee ids attached
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	if err := r.loadAssignees(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByCardID retrieves all tasks on a card ordered by position
func (r *TaskRepository) GetByCardID(ctx context.Context, cardID string) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).Where("card_id = ?", cardID).Order("position").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	for i := range tasks {
		if err := r.loadAssignees(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskMembership{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Move places the task on a card at the given position
func (r *TaskRepository) Move(ctx context.Context, id, cardID string, position float64) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"card_id": cardID, "position": position})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetMembers replaces the task's assignee set with the given user ids
func (r *TaskRepository) SetMembers(ctx context.Context, taskID string, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskMembership{}).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			row := model.TaskMembership{ID: uuid.NewString(), TaskID: taskID, UserID: userID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TaskRepository) loadAssignees(ctx context.Context, task *model.Task) error {
	task.UserIDs = []string{}
	return r.db.WithContext(ctx).Model(&model.TaskMembership{}).
		Where("task_id = ?", task.ID).
		Pluck("user_id", &task.UserIDs).Error
}
