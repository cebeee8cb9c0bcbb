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

type MembershipHandler struct {
	membershipRepo *repository.MembershipRepository
	boardRepo      *repository.BoardRepository
	userRepo       *repository.UserRepository
	hub            *hub.Hub
}

func NewMembershipHandler(membershipRepo *repository.MembershipRepository, boardRepo *repository.BoardRepository, userRepo *repository.UserRepository, h *hub.Hub) *MembershipHandler {
	return &MembershipHandler{
		membershipRepo: membershipRepo,
		boardRepo:      boardRepo,
		userRepo:       userRepo,
		hub:            h,
	}
}

// Create adds a user to a board. Only the board owner manages members.
func (h *MembershipHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.MembershipPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.BoardID == nil || patch.UserID == nil || patch.Role == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Board ID, user ID and role are required"})
		return
	}

	if !h.requireOwner(c, *patch.BoardID, userID) {
		return
	}

	member, err := h.userRepo.GetByID(c.Request.Context(), *patch.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	existing, err := h.membershipRepo.GetByBoardAndUser(c.Request.Context(), *patch.BoardID, *patch.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	membership := model.Membership{ID: uuid.NewString()}
	patch.Apply(&membership)

	if err := h.membershipRepo.Create(c.Request.Context(), &membership); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create membership"})
		return
	}

	h.hub.Broadcast(membership.BoardID, hub.Message{Type: "membershipCreate", Item: membership}, clientID(c))
	c.JSON(http.StatusCreated, membership)
}

// Update changes a member's role
func (h *MembershipHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	membership, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireOwner(c, membership.BoardID, userID) {
		return
	}

	var patch model.MembershipPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.BoardID = nil
	patch.UserID = nil
	patch.Apply(membership)

	if err := h.membershipRepo.Update(c.Request.Context(), membership); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update membership"})
		return
	}

	h.hub.Broadcast(membership.BoardID, hub.Message{Type: "membershipUpdate", Item: membership}, clientID(c))
	c.JSON(http.StatusOK, membership)
}

// Delete removes a user from a board. Members may remove themselves.
func (h *MembershipHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	membership, ok := h.load(c)
	if !ok {
		return
	}

	if membership.UserID != userID && !h.requireOwner(c, membership.BoardID, userID) {
		return
	}

	if err := h.membershipRepo.Delete(c.Request.Context(), membership.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete membership"})
		return
	}

	h.hub.Broadcast(membership.BoardID, hub.Message{Type: "membershipDelete", Item: gin.H{"id": membership.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": membership.ID})
}

func (h *MembershipHandler) load(c *gin.Context) (*model.Membership, bool) {
	membership, err := h.membershipRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve membership"})
		return nil, false
	}
	return membership, true
}

func (h *MembershipHandler) requireOwner(c *gin.Context, boardID, userID string) bool {
	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return false
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can manage members"})
		return false
	}
	return true
}
