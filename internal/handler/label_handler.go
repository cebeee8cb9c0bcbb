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

type LabelHandler struct {
	labelRepo *repository.LabelRepository
	access    *accessChecker
	hub       *hub.Hub
}

func NewLabelHandler(labelRepo *repository.LabelRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *LabelHandler {
	return &LabelHandler{
		labelRepo: labelRepo,
		access:    &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:       h,
	}
}

// Create creates a new label on a board
func (h *LabelHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.LabelPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.BoardID == nil || patch.Color == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Board ID and color are required"})
		return
	}

	if !h.requireEdit(c, *patch.BoardID, userID) {
		return
	}

	label := model.Label{ID: uuid.NewString()}
	patch.Apply(&label)

	if err := h.labelRepo.Create(c.Request.Context(), &label); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label"})
		return
	}

	h.hub.Broadcast(label.BoardID, hub.Message{Type: "labelCreate", Item: label}, clientID(c))
	c.JSON(http.StatusCreated, label)
}

// Update applies a partial update to a label
func (h *LabelHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	label, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, label.BoardID, userID) {
		return
	}

	var patch model.LabelPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.BoardID = nil
	patch.Apply(label)

	if err := h.labelRepo.Update(c.Request.Context(), label); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update label"})
		return
	}

	h.hub.Broadcast(label.BoardID, hub.Message{Type: "labelUpdate", Item: label}, clientID(c))
	c.JSON(http.StatusOK, label)
}

// Delete removes a label and its card associations
func (h *LabelHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	label, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, label.BoardID, userID) {
		return
	}

	if err := h.labelRepo.Delete(c.Request.Context(), label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete label"})
		return
	}

	h.hub.Broadcast(label.BoardID, hub.Message{Type: "labelDelete", Item: gin.H{"id": label.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": label.ID})
}

func (h *LabelHandler) load(c *gin.Context) (*model.Label, bool) {
	label, err := h.labelRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve label"})
		return nil, false
	}
	return label, true
}

func (h *LabelHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
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
