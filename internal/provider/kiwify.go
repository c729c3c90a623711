package provider

import (
	"encoding/json"
	"fmt"

	"iq-report-service/internal/domain"
)

// KiwifyNormalizer extracts events from Kiwify webhooks. Kiwify has
// shipped several payload shapes over time: the order may sit at the
// top level, under "order" or under "data"; the customer block may be
// "Customer", "customer" or "buyer"; the event token may arrive as
// "event", "webhook_type", "webhook_event_type", "event_type" or only
// as an order status. Every known path is tried in priority order.
type KiwifyNormalizer struct{}

func (KiwifyNormalizer) Name() string            { return "kiwify" }
func (KiwifyNormalizer) SignatureHeader() string { return "x-kiwify-signature" }

func (n KiwifyNormalizer) Normalize(body []byte) (domain.PaymentEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%w: malformed kiwify payload: %v", domain.ErrValidation, err)
	}

	order := payload
	if nested, ok := payload["order"].(map[string]any); ok {
		order = nested
	} else if nested, ok := payload["data"].(map[string]any); ok {
		order = nested
	}

	email := first(
		dig(order, "Customer", "email"),
		dig(order, "customer", "email"),
		dig(order, "buyer", "email"),
		dig(order, "email"),
		dig(payload, "Customer", "email"),
		dig(payload, "customer", "email"),
		dig(payload, "buyer", "email"),
		dig(payload, "email"),
	)

	eventToken := first(
		dig(payload, "event"),
		dig(payload, "webhook_type"),
		dig(order, "webhook_event_type"),
		dig(order, "event_type"),
		dig(payload, "event_type"),
	)
	statusToken := first(
		dig(order, "order_status"),
		dig(order, "status"),
		dig(payload, "status"),
		dig(payload, "payment", "status"),
	)

	// The event token decides when present; order status is the tiebreak
	// for shapes that only carry a status.
	kind := domain.EventIgnored
	raw := eventToken
	if eventToken != "" {
		kind = ClassifyStatus(eventToken)
	}
	if kind == domain.EventIgnored && statusToken != "" {
		kind = ClassifyStatus(statusToken)
		raw = statusToken
	}

	orderID := first(
		dig(order, "order_id"),
		dig(order, "id"),
		dig(payload, "order_id"),
		dig(payload, "id"),
	)

	return domain.PaymentEvent{
		Provider:  n.Name(),
		Kind:      kind,
		RawStatus: raw,
		OrderID:   orderID,
		Email:     domain.NormalizeEmail(email),
	}, nil
}
