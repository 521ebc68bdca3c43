package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"

	"eventplanner/internal/domain"
)

const maxDecodeErrorsPerConn = 3

type wsUserIDContextKey struct{}

type joinPayload struct {
	EventID string `json:"event_id"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler upgrades authenticated requests to a realtime session. The client
// authenticates with a token query parameter or a bearer Authorization header
// and is subscribed to its private channel immediately. Event channels are
// joined explicitly with a join-event frame and require read access.
func Handler(hub *Hub, verifier domain.TokenVerifier, events domain.EventService) http.Handler {
	ws := websocket.Handler(func(conn *websocket.Conn) {
		userID := ""
		if request := conn.Request(); request != nil {
			if resolved, ok := request.Context().Value(wsUserIDContextKey{}).(string); ok {
				userID = resolved
			}
		}
		handleConn(conn, hub, events, userID)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), wsUserIDContextKey{}, userID)
		ws.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func handleConn(conn *websocket.Conn, hub *Hub, events domain.EventService, userID string) {
	defer func() {
		_ = conn.Close()
	}()

	p := newPeer(json.NewEncoder(conn))
	defer hub.detach(p)

	hub.subscribe(UserChannel(userID), p)

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var f inboundFrame
		if err := decoder.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = p.writeFrame(errorFrame("bad_request", "invalid frame"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		switch f.Type {
		case "join-event":
			handleJoin(conn.Request().Context(), hub, events, p, userID, f.Payload)
		case "leave-event":
			handleLeave(hub, p, f.Payload)
		default:
			_ = p.writeFrame(errorFrame("bad_request", "unsupported frame type"))
		}
	}
}

func handleJoin(ctx context.Context, hub *Hub, events domain.EventService, p *peer, userID string, raw json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || strings.TrimSpace(payload.EventID) == "" {
		_ = p.writeFrame(errorFrame("bad_request", "event_id is required"))
		return
	}
	eventID := strings.TrimSpace(payload.EventID)

	// GetEvent folds missing and inaccessible events together, so a denied
	// join never confirms the event exists.
	if _, err := events.GetEvent(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = p.writeFrame(errorFrame("not_found", "event not found"))
			return
		}
		_ = p.writeFrame(errorFrame("internal_error", "event lookup failed"))
		return
	}

	hub.subscribe(EventChannel(eventID), p)
	_ = p.writeFrame(frame{Type: "joined", Payload: joinPayload{EventID: eventID}})
}

func handleLeave(hub *Hub, p *peer, raw json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || strings.TrimSpace(payload.EventID) == "" {
		_ = p.writeFrame(errorFrame("bad_request", "event_id is required"))
		return
	}
	eventID := strings.TrimSpace(payload.EventID)
	hub.unsubscribe(EventChannel(eventID), p)
	_ = p.writeFrame(frame{Type: "left", Payload: joinPayload{EventID: eventID}})
}

func errorFrame(code, message string) frame {
	return frame{Type: "error", Payload: errorPayload{Code: code, Message: message}}
}
