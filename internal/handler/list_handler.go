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

type ListHandler struct {
	listRepo *repository.ListRepository
	access   *accessChecker
	hub      *hub.Hub
}

func NewListHandler(listRepo *repository.ListRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *ListHandler {
	return &ListHandler{
		listRepo: listRepo,
		access:   &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:      h,
	}
}

// Create creates a new list on a board
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.ListPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.BoardID == nil || patch.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Board ID and name are required"})
		return
	}

	allowed, err := h.access.canEdit(c.Request.Context(), *patch.BoardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to edit this board"})
		return
	}

	list := model.List{ID: uuid.NewString()}
	patch.Apply(&list)

	if err := h.listRepo.Create(c.Request.Context(), &list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	h.hub.Broadcast(list.BoardID, hub.Message{Type: "listCreate", Item: list}, clientID(c))
	c.JSON(http.StatusCreated, list)
}

// Update applies a partial update to a list
func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, list.BoardID, userID) {
		return
	}

	var patch model.ListPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.BoardID = nil
	patch.Apply(list)

	if err := h.listRepo.Update(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
		return
	}

	h.hub.Broadcast(list.BoardID, hub.Message{Type: "listUpdate", Item: list}, clientID(c))
	c.JSON(http.StatusOK, list)
}

// Delete removes a list and the cards under it
func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, list.BoardID, userID) {
		return
	}

	if err := h.listRepo.Delete(c.Request.Context(), list.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	h.hub.Broadcast(list.BoardID, hub.Message{Type: "listDelete", Item: gin.H{"id": list.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": list.ID})
}

// Move repositions a list on its board
func (h *ListHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, list.BoardID, userID) {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.ParentID != list.BoardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lists cannot move between boards"})
		return
	}

	if err := h.listRepo.Move(c.Request.Context(), list.ID, req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move list"})
		return
	}
	list.Position = req.Position

	h.hub.Broadcast(list.BoardID, hub.Message{Type: "listUpdate", Item: list}, clientID(c))
	c.JSON(http.StatusOK, list)
}

func (h *ListHandler) load(c *gin.Context) (*model.List, bool) {
	list, err := h.listRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return nil, false
	}
	return list, true
}

func (h *ListHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
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
