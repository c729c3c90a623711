// Package provider normalizes payment-processor webhook payloads into
// provider-independent events. Each provider ships a Normalizer; the
// only real variation between them is field-path extraction, so the
// reconciler stays payload-agnostic.
package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"iq-report-service/internal/domain"
)

// Normalizer turns one provider's raw webhook body into a PaymentEvent.
// Normalize errors only on structurally invalid payloads; unrecognized
// event types classify as ignored, not as errors.
type Normalizer interface {
	Name() string
	// SignatureHeader is the request header carrying the HMAC signature.
	SignatureHeader() string
	Normalize(body []byte) (domain.PaymentEvent, error)
}

// ForName returns the normalizer registered under a route name.
func ForName(name string) (Normalizer, bool) {
	switch strings.ToLower(name) {
	case "kiwify":
		return KiwifyNormalizer{}, true
	case "mercadopago", "mercado-pago":
		return MercadoPagoNormalizer{}, true
	}
	return nil, false
}

// VerifySignature recomputes the HMAC-SHA256 hex digest of the raw body
// and compares it to the declared signature in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// ClassifyStatus maps a provider status or event token onto an event
// kind. The token sets come from observed payload variants; anything
// unrecognized is ignored so unknown event families ack as no-ops.
func ClassifyStatus(token string) domain.EventKind {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "paid", "approved", "complete", "completed",
		"order.paid", "order_approved", "order.complete", "order.completed",
		"sale.approved":
		return domain.EventPaid
	case "refused", "rejected", "order.refused", "order_refused":
		return domain.EventRefused
	case "refunded", "order.refunded", "order_refunded",
		"chargeback", "order.chargeback", "charged_back", "chargedback":
		return domain.EventRefunded
	default:
		return domain.EventIgnored
	}
}

// dig walks a decoded JSON object along a field path, returning the
// value at the end as a string, or "". Numeric ids decode as float64
// and are rendered without a fraction.
func dig(m map[string]any, path ...string) string {
	cur := any(m)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = obj[key]
		if !ok {
			return ""
		}
	}
	switch v := cur.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// first returns the first non-empty string.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
