package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// EventChannel names the shared channel for an event's subscribers.
func EventChannel(eventID string) string { return "event:" + eventID }

// UserChannel names a user's private channel.
func UserChannel(userID string) string { return "user:" + userID }

type frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// peer is one connected session. The encoder is guarded so concurrent
// publishes never interleave frames on the wire.
type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newPeer(encoder *json.Encoder) *peer {
	return &peer{encoder: encoder}
}

func (p *peer) writeFrame(f frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(f)
}

// Hub tracks which peers are subscribed to which channels and implements
// domain.Broadcaster. Delivery is best-effort: a failed write detaches the
// peer and is otherwise dropped.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*peer]struct{}
	byPeer   map[*peer]map[string]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*peer]struct{}),
		byPeer:   make(map[*peer]map[string]struct{}),
		logger:   logger,
	}
}

func (h *Hub) subscribe(channel string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*peer]struct{})
		h.channels[channel] = subs
	}
	subs[p] = struct{}{}

	chans, ok := h.byPeer[p]
	if !ok {
		chans = make(map[string]struct{})
		h.byPeer[p] = chans
	}
	chans[channel] = struct{}{}
}

func (h *Hub) unsubscribe(channel string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(channel, p)
}

// detach removes the peer from every channel it joined. Called on disconnect.
func (h *Hub) detach(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel := range h.byPeer[p] {
		h.removeLocked(channel, p)
	}
}

func (h *Hub) removeLocked(channel string, p *peer) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, p)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	if chans, ok := h.byPeer[p]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(h.byPeer, p)
		}
	}
}

func (h *Hub) publish(channel, messageType string, payload any) {
	h.mu.Lock()
	subs := make([]*peer, 0, len(h.channels[channel]))
	for p := range h.channels[channel] {
		subs = append(subs, p)
	}
	h.mu.Unlock()

	f := frame{Type: messageType, Payload: payload}
	for _, p := range subs {
		if err := p.writeFrame(f); err != nil {
			h.logger.Debug("drop unreachable subscriber", "channel", channel, "err", err)
			h.detach(p)
		}
	}
}

// PublishEvent notifies every session joined to the event's channel.
func (h *Hub) PublishEvent(eventID, messageType string, payload any) {
	h.publish(EventChannel(eventID), messageType, payload)
}

// PublishUser notifies the user's private channel.
func (h *Hub) PublishUser(userID, messageType string, payload any) {
	h.publish(UserChannel(userID), messageType, payload)
}
