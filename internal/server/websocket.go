package server

import (
	"bytes"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// scanWebSocketHandler handles WebSocket connections for live frame
// scanning: each binary message is one encoded frame, each reply one JSON
// ScanResponse.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hung connections; pongs push it forward.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Keepalive pings.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType != websocket.BinaryMessage {
			s.writeWebSocketResponse(conn, ScanResponse{Success: false, Error: "expected a binary frame"})
			continue
		}

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		s.handleWebSocketFrame(conn, data)
	}
}

func (s *Server) handleWebSocketFrame(conn *websocket.Conn, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		scanRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.writeWebSocketResponse(conn, ScanResponse{Success: false, Error: "invalid image format"})
		return
	}

	result := s.scan(img, "websocket")
	defer result.Release()

	s.writeWebSocketResponse(conn, ScanResponse{
		Success: true,
		Result:  s.toAPIResult(result, false),
	})
}

func (s *Server) writeWebSocketResponse(conn *websocket.Conn, resp ScanResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("Failed to write WebSocket response", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
