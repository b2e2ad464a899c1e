package realtime

import (
	"sync"

	"bonafide-backend/internal/domain/workflow"
)

// Message is what browsers receive on the change stream.
type Message struct {
	Type   string           `json:"type"`
	Change *workflow.Change `json:"change,omitempty"`
}

func Ready() Message { return Message{Type: "ready"} }

func ChangeMessage(c workflow.Change) Message { return Message{Type: "change", Change: &c} }

// Hub fans messages out to the streams connected to this instance.
// Slow subscribers lose messages rather than block the others.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Message]struct{}
}

func NewHub() *Hub { return &Hub{subs: map[chan Message]struct{}{}} }

func (h *Hub) Subscribe(buf int) chan Message {
	ch := make(chan Message, buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
