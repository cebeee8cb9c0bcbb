package handler

import (
	"context"
	"net/http"

	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

// accessChecker resolves what a user may do on a board. Owners and editor
// members may mutate; viewer members may only read.
type accessChecker struct {
	boardRepo      *repository.BoardRepository
	membershipRepo *repository.MembershipRepository
}

func (a *accessChecker) canView(ctx context.Context, boardID, userID string) (bool, error) {
	board, err := a.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return false, err
	}
	if board.OwnerID == userID {
		return true, nil
	}
	membership, err := a.membershipRepo.GetByBoardAndUser(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

func (a *accessChecker) canEdit(ctx context.Context, boardID, userID string) (bool, error) {
	board, err := a.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return false, err
	}
	if board.OwnerID == userID {
		return true, nil
	}
	membership, err := a.membershipRepo.GetByBoardAndUser(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.Role == model.RoleEditor, nil
}

// currentUserID pulls the authenticated user's id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	id, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return "", false
	}
	return id, true
}

// clientID identifies the caller's sync engine instance so broadcasts can
// skip echoing its own mutation back to it.
func clientID(c *gin.Context) string {
	return c.GetHeader("X-Client-ID")
}

// moveRequest is the body of every move endpoint: the destination parent and
// the position the client allocated within it.
type moveRequest struct {
	ParentID string  `json:"parentId" binding:"required"`
	Position float64 `json:"position"`
}
