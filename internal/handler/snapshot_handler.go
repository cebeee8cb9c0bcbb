package handler

import (
	"errors"
	"net/http"

	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type SnapshotHandler struct {
	snapshotRepo *repository.SnapshotRepository
	access       *accessChecker
}

func NewSnapshotHandler(snapshotRepo *repository.SnapshotRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotRepo: snapshotRepo,
		access:       &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
	}
}

// Get returns the full state of one board. Reconnecting clients load this
// before replaying live pushes.
func (h *SnapshotHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID := c.Param("id")

	allowed, err := h.access.canView(c.Request.Context(), boardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this board"})
		return
	}

	snapshot, err := h.snapshotRepo.LoadBoard(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
