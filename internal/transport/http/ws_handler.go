package http

import (
	"net/http"

	"iq-report-service/internal/app"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WSHandler streams payment-status transitions for one session so the
// result page learns about the webhook without polling the report.
type WSHandler struct {
	sessions *app.SessionService
	hub      *app.StatusHub
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions *app.SessionService, hub *app.StatusHub, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		hub:      hub,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and forwards status updates until the
// client disconnects. The current status is sent first so late
// subscribers don't miss a transition that already happened.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := h.sessions.GetBySessionID(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel := h.hub.Subscribe(sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "status", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "status", Payload: app.StatusUpdate{
		SessionID:     session.SessionID,
		PaymentStatus: session.PaymentStatus,
		OrderID:       session.ExternalOrderID,
		At:            session.UpdatedAt,
	}}

	// The stream is one-way; the read loop only notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
