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

type AttachmentHandler struct {
	attachmentRepo *repository.AttachmentRepository
	cardRepo       *repository.CardRepository
	access         *accessChecker
	hub            *hub.Hub
}

func NewAttachmentHandler(attachmentRepo *repository.AttachmentRepository, cardRepo *repository.CardRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		cardRepo:       cardRepo,
		access:         &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:            h,
	}
}

// Create attaches a link to a card
func (h *AttachmentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.AttachmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.CardID == nil || patch.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card ID and name are required"})
		return
	}

	boardID, ok := h.boardOfCard(c, *patch.CardID)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	attachment := model.Attachment{ID: uuid.NewString(), CreatedAt: time.Now()}
	patch.Apply(&attachment)

	if err := h.attachmentRepo.Create(c.Request.Context(), &attachment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attachment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "attachmentCreate", Item: attachment}, clientID(c))
	c.JSON(http.StatusCreated, attachment)
}

// Update applies a partial update to an attachment
func (h *AttachmentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attachment, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	var patch model.AttachmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.CardID = nil
	patch.Apply(attachment)

	if err := h.attachmentRepo.Update(c.Request.Context(), attachment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attachment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "attachmentUpdate", Item: attachment}, clientID(c))
	c.JSON(http.StatusOK, attachment)
}

// Delete removes an attachment
func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attachment, boardID, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, boardID, userID) {
		return
	}

	if err := h.attachmentRepo.Delete(c.Request.Context(), attachment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	h.hub.Broadcast(boardID, hub.Message{Type: "attachmentDelete", Item: gin.H{"id": attachment.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": attachment.ID})
}

func (h *AttachmentHandler) load(c *gin.Context) (*model.Attachment, string, bool) {
	attachment, err := h.attachmentRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
			return nil, "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachment"})
		return nil, "", false
	}

	boardID, ok := h.boardOfCard(c, attachment.CardID)
	if !ok {
		return nil, "", false
	}
	return attachment, boardID, true
}

func (h *AttachmentHandler) boardOfCard(c *gin.Context, cardID string) (string, bool) {
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

func (h *AttachmentHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
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
