package app

import (
	"sync"
	"time"

	"iq-report-service/internal/domain"
)

// StatusUpdate is pushed to subscribers when a session's payment status
// transitions.
type StatusUpdate struct {
	SessionID     string               `json:"sessionId"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	OrderID       string               `json:"orderId,omitempty"`
	At            time.Time            `json:"at"`
}

// StatusHub fans payment-status transitions out to websocket
// subscribers so clients don't have to poll the report endpoint.
type StatusHub struct {
	mu   sync.Mutex
	subs map[string]map[chan StatusUpdate]struct{}
}

func NewStatusHub() *StatusHub {
	return &StatusHub{subs: make(map[string]map[chan StatusUpdate]struct{})}
}

// Subscribe returns a channel receiving updates for one session. The
// caller must invoke the returned cancel function to avoid leaks.
func (h *StatusHub) Subscribe(sessionID string) (<-chan StatusUpdate, func()) {
	ch := make(chan StatusUpdate, 8)

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[chan StatusUpdate]struct{})
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an update to every subscriber of the session. Slow
// subscribers lose the oldest queued update rather than blocking the
// reconciler.
func (h *StatusHub) Publish(update StatusUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[update.SessionID] {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
