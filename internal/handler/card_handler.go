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

type CardHandler struct {
	cardRepo *repository.CardRepository
	listRepo *repository.ListRepository
	access   *accessChecker
	hub      *hub.Hub
}

func NewCardHandler(cardRepo *repository.CardRepository, listRepo *repository.ListRepository, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository, h *hub.Hub) *CardHandler {
	return &CardHandler{
		cardRepo: cardRepo,
		listRepo: listRepo,
		access:   &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
		hub:      h,
	}
}

// Create creates a new card in a list. The board is derived from the list.
func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.CardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if patch.ListID == nil || patch.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "List ID and name are required"})
		return
	}

	list, err := h.listRepo.GetByID(c.Request.Context(), *patch.ListID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}

	if !h.requireEdit(c, list.BoardID, userID) {
		return
	}

	now := time.Now()
	card := model.Card{
		ID:        uuid.NewString(),
		BoardID:   list.BoardID,
		CreatedAt: now,
		UpdatedAt: now,
		UserIDs:   []string{},
		LabelIDs:  []string{},
	}
	patch.BoardID = nil
	patch.Apply(&card)

	if err := h.cardRepo.Create(c.Request.Context(), &card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}
	if len(card.UserIDs) > 0 {
		if err := h.cardRepo.SetMembers(c.Request.Context(), card.ID, card.UserIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set card members"})
			return
		}
	}
	if len(card.LabelIDs) > 0 {
		if err := h.cardRepo.SetLabels(c.Request.Context(), card.ID, card.LabelIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set card labels"})
			return
		}
	}

	h.hub.Broadcast(card.BoardID, hub.Message{Type: "cardCreate", Item: card}, clientID(c))
	c.JSON(http.StatusCreated, card)
}

// Update applies a partial update to a card, including its member and label
// id lists
func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, card.BoardID, userID) {
		return
	}

	var patch model.CardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	patch.BoardID = nil
	patch.ListID = nil
	patch.Apply(card)
	card.UpdatedAt = time.Now()

	if err := h.cardRepo.Update(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}
	if patch.UserIDs != nil {
		if err := h.cardRepo.SetMembers(c.Request.Context(), card.ID, card.UserIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set card members"})
			return
		}
	}
	if patch.LabelIDs != nil {
		if err := h.cardRepo.SetLabels(c.Request.Context(), card.ID, card.LabelIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set card labels"})
			return
		}
	}

	h.hub.Broadcast(card.BoardID, hub.Message{Type: "cardUpdate", Item: card}, clientID(c))
	c.JSON(http.StatusOK, card)
}

// Delete removes a card and everything under it
func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, card.BoardID, userID) {
		return
	}

	if err := h.cardRepo.Delete(c.Request.Context(), card.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	h.hub.Broadcast(card.BoardID, hub.Message{Type: "cardDelete", Item: gin.H{"id": card.ID}}, clientID(c))
	c.JSON(http.StatusOK, gin.H{"id": card.ID})
}

// Move places a card in a list at a client-allocated position. The
// destination list must be on the same board.
func (h *CardHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card, ok := h.load(c)
	if !ok {
		return
	}
	if !h.requireEdit(c, card.BoardID, userID) {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dest, err := h.listRepo.GetByID(c.Request.Context(), req.ParentID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Destination list not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve destination list"})
		return
	}
	if dest.BoardID != card.BoardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cards cannot move between boards"})
		return
	}

	if err := h.cardRepo.Move(c.Request.Context(), card.ID, dest.ID, req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move card"})
		return
	}
	card.ListID = dest.ID
	card.Position = req.Position

	h.hub.Broadcast(card.BoardID, hub.Message{Type: "cardUpdate", Item: card}, clientID(c))
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) load(c *gin.Context) (*model.Card, bool) {
	card, err := h.cardRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return nil, false
	}
	return card, true
}

func (h *CardHandler) requireEdit(c *gin.Context, boardID, userID string) bool {
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
