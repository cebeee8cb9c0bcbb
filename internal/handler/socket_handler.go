package handler

import (
	"errors"
	"log"
	"net/http"

	"planboard/internal/hub"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SocketHandler struct {
	hub    *hub.Hub
	access *accessChecker
}

func NewSocketHandler(h *hub.Hub, boardRepo *repository.BoardRepository, membershipRepo *repository.MembershipRepository) *SocketHandler {
	return &SocketHandler{
		hub:    h,
		access: &accessChecker{boardRepo: boardRepo, membershipRepo: membershipRepo},
	}
}

// Subscribe upgrades the connection and registers it for the board's pushes
func (h *SocketHandler) Subscribe(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := hub.NewClient(h.hub, conn, boardID, clientID(c))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
