package handler

import (
	"errors"
	"net/http"
	"time"

	"planboard/internal/hub"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardHandler struct {
	boardRepo *repository.BoardRepository
	access    *accessChecker
	hub       *hub.Hub
}

func NewBoardHandler(boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *BoardHandler {
	return &BoardHandler{
		boardRepo: boardRepo,
		access:    &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:       h,
	}
}

// Create creates a new board owned by the authenticated user
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.BoardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	now := time.Now()
	board := model.Board{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	patch.Apply(&board)

	if err := h.boardRepo.Create(c.Request.Context(), &board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, board)
}

// GetAll lists every board the authenticated user can see
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.boardRepo.GetForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	c.JSON(http.StatusOK, boards)
}

// Update applies a partial update to a board
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID := c.Param("id")

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	allowed, err := h.access.canEdit(c.Request.Context(), boardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to update this board"})
		return
	}

	var patch model.BoardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patch.Apply(board)
	board.UpdatedAt = time.Now()

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	h.hub.Broadcast(board.ID, hub.Message{Type: "boardUpdate", Item: board}, clientID(c))
	c.JSON(http.StatusOK, board)
}

// Delete removes a board; only the owner may do this
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID := c.Param("id")

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this board"})
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), boardID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "boardDelete", Item: gin.H{"id": boardID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": boardID})
}

// Move repositions a board in the user's board list
func (h *BoardHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID := c.Param("id")

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	allowed, err := h.access.canEdit(c.Request.Context(), boardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to move this board"})
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board.ProjectID = req.ParentID
	board.Position = req.Position
	board.UpdatedAt = time.Now()

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move board"})
		return
	}

	h.hub.Broadcast(board.ID, hub.Message{Type: "boardUpdate", Item: board}, clientID(c))
	c.JSON(http.StatusOK, board)
}
