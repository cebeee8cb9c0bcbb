package handler

import (
	"errors"
	"net/http"

	"planboard/internal/hub"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo *repository.TaskRepository
	cardRepo *repository.CardRepository
	access   *accessChecker
	hub      *hub.Hub
}

func NewTaskHandler(taskRepo *repository.TaskRepository, cardRepo *repository.CardRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		cardRepo: cardRepo,
		access:   &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:      h,
	}
}

// Create creates a new task on a card
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.CardID == nil || patch.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card ID and name are required"})
		return
	}

	_, boardID, ok := h.loadCard(c, *patch.CardID)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	task := model.Task{ID: uuid.NewString(), UserIDs: []string{}}
	patch.Apply(&task)

	if err := h.taskRepo.Create(c.Request.Context(), &task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	if len(task.UserIDs) > 0 {
		if err := h.taskRepo.SetMembers(c.Request.Context(), task.ID, task.UserIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set task assignees"})
			return
		}
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "taskCreate", Item: task}, clientID(c))
	c.JSON(http.StatusCreated, task)
}

// Update applies a partial update to a task, including its assignee id list
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.CardID = nil
	patch.Apply(task)

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	if patch.UserIDs != nil {
		if err := h.taskRepo.SetMembers(c.Request.Context(), task.ID, task.UserIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set task assignees"})
			return
		}
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "taskUpdate", Item: task}, clientID(c))
	c.JSON(http.StatusOK, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "taskDelete", Item: gin.H{"id": task.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": task.ID})
}

// Move places a task on a card at a client-allocated position. The
// destination card must be on the same board.
func (h *TaskHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dest, destBoardID, ok := h.loadCard(c, req.ParentID)
	if !ok {
		return
	}
	if destBoardID != boardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tasks cannot move between boards"})
		return
	}

	if err := h.taskRepo.Move(c.Request.Context(), task.ID, dest.ID, req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		return
	}
	task.CardID = dest.ID
	task.Position = req.Position

	h.hub.Broadcast(boardID, hub.Message{Type: "taskUpdate", Item: task}, clientID(c))
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) load(c *gin.Context) (*model.Task, string, bool) {
	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return nil, "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return nil, "", false
	}

	_, boardID, ok := h.loadCard(c, task.CardID)
	if !ok {
		return nil, "", false
	}
	return task, boardID, true
}

func (h *TaskHandler) loadCard(c *gin.Context, cardID string) (*model.Card, string, bool) {
	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return nil, "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return nil, "", false
	}
	return card, card.BoardID, true
}

func (h *TaskHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
	allowed, err := h.access.canEdit(c.Request.Context(), boardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to edit this board"})
		return false
	}
	return true
}
