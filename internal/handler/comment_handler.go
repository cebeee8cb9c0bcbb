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

type CommentHandler struct {
	commentRepo *repository.CommentRepository
	cardRepo    *repository.CardRepository
	boardRepo   *repository.BoardRepository
	access      *accessChecker
	hub         *hub.Hub
}

func NewCommentHandler(commentRepo *repository.CommentRepository, cardRepo *repository.CardRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *CommentHandler {
	return &CommentHandler{
		commentRepo: commentRepo,
		cardRepo:    cardRepo,
		boardRepo:   boardRepo,
		access:      &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:         h,
	}
}

// Create adds a comment to a card. The author is always the current user.
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.CommentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.CardID == nil || patch.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card ID and text are required"})
		return
	}

	boardID, ok := h.boardOfCard(c, *patch.CardID)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	now := time.Now()
	comment := model.Comment{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	patch.UserID = nil
	patch.Apply(&comment)

	if err := h.commentRepo.Create(c.Request.Context(), &comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "commentCreate", Item: comment}, clientID(c))
	c.JSON(http.StatusCreated, comment)
}

// Update rewrites a comment's text. Only the author may edit their comment.
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	comment, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a comment"})
		return
	}

	var patch model.CommentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.CardID = nil
	patch.UserID = nil
	patch.Apply(comment)
	comment.UpdatedAt = time.Now()

	if err := h.commentRepo.Update(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "commentUpdate", Item: comment}, clientID(c))
	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment. The author or the board owner may delete it.
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	comment, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if comment.UserID != userID {
		board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
		if err != nil || board.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or the board owner can delete a comment"})
			return
		}
	}

	if err := h.commentRepo.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "commentDelete", Item: gin.H{"id": comment.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": comment.ID})
}

func (h *CommentHandler) load(c *gin.Context) (*model.Comment, string, bool) {
	comment, err := h.commentRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return nil, "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return nil, "", false
	}

	boardID, ok := h.boardOfCard(c, comment.CardID)
	if !ok {
		return nil, "", false
	}
	return comment, boardID, true
}

func (h *CommentHandler) boardOfCard(c *gin.Context, cardID string) (string, bool) {
	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return "", false
	}
	return card.BoardID, true
}

func (h *CommentHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
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
