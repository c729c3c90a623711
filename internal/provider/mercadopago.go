package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"iq-report-service/internal/domain"
)

// MercadoPagoNormalizer handles Mercado Pago notifications. The usual
// shape is a thin reference like {"type":"payment","data":{"id":"123"}}
// that carries no status or payer; those normalize to EventUnknown and
// the reconciler resolves them against the payments API. Test
// deliveries and some merchant integrations post the full payment
// resource instead, which classifies directly.
type MercadoPagoNormalizer struct{}

func (MercadoPagoNormalizer) Name() string            { return "mercadopago" }
func (MercadoPagoNormalizer) SignatureHeader() string { return "x-signature" }

func (n MercadoPagoNormalizer) Normalize(body []byte) (domain.PaymentEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%w: malformed mercado pago payload: %v", domain.ErrValidation, err)
	}

	// Full payment resource: has its own status.
	if status := dig(payload, "status"); status != "" {
		return domain.PaymentEvent{
			Provider:  n.Name(),
			Kind:      classifyMercadoPagoStatus(status),
			RawStatus: status,
			OrderID:   dig(payload, "id"),
			Email:     domain.NormalizeEmail(dig(payload, "payer", "email")),
		}, nil
	}

	// Notification reference: needs a lookup.
	typ := first(dig(payload, "type"), dig(payload, "topic"))
	action := dig(payload, "action")
	if typ == "payment" || strings.HasPrefix(action, "payment.") {
		id := first(dig(payload, "data", "id"), dig(payload, "id"))
		if id == "" {
			return domain.PaymentEvent{}, fmt.Errorf("%w: mercado pago notification without payment id", domain.ErrValidation)
		}
		return domain.PaymentEvent{
			Provider:  n.Name(),
			Kind:      domain.EventUnknown,
			RawStatus: action,
			PaymentID: id,
		}, nil
	}

	return domain.PaymentEvent{Provider: n.Name(), Kind: domain.EventIgnored, RawStatus: first(typ, action)}, nil
}

// classifyMercadoPagoStatus maps the payments API status vocabulary.
// ClassifyStatus covers the shared tokens; Mercado Pago adds
// "cancelled" (refused) and "in_process"/"pending" (not yet decided).
func classifyMercadoPagoStatus(status string) domain.EventKind {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "cancelled":
		return domain.EventRefused
	case "pending", "in_process", "in_mediation", "authorized":
		return domain.EventIgnored
	default:
		return ClassifyStatus(status)
	}
}
