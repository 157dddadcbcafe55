package server

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"bqmba/internal/auth"
	"bqmba/internal/console"
)

// handleWS runs a console session over a websocket: each text message is a
// command line, each reply carries that line's output.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	allowWrite := false
	if s.verifier != nil && auth.TokenFromRequest(r) != "" {
		_, err := s.verifier.Authorize(r)
		switch {
		case err == nil:
			allowWrite = true
		case errors.Is(err, auth.ErrForbidden):
			// Valid token without the control scope: read-only session.
		default:
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("[ws] console opened from %s (writes %v)", r.RemoteAddr, allowWrite)

	d := console.NewDispatcher(s.runner, s.addr, s.unseal)
	d.AllowWrite = allowWrite

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var out bytes.Buffer
		quit := d.Handle(&out, string(msg))
		if out.Len() > 0 {
			if err := conn.WriteMessage(websocket.TextMessage, out.Bytes()); err != nil {
				break
			}
		}
		if quit {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			break
		}
	}
	log.Printf("[ws] console closed from %s", r.RemoteAddr)
}
