package relay

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"go-fleet/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for now (Dev mode)
	},
}

type Handler struct {
	router   *Router
	registry *Registry
}

func NewHandler(router *Router, registry *Registry) *Handler {
	return &Handler{router: router, registry: registry}
}

// ServeWs upgrades an authenticated HTTP request to a relay connection.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := newClient(h.router, conn, userID)
	h.registry.Register(client)
	log.Printf("relay: client connected: %s (user %d)", client.ID, userID)

	go client.writePump()
	go client.readPump()
}
