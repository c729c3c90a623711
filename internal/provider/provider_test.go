package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"iq-report-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKiwifyNormalizeFlatEventPayload(t *testing.T) {
	body := []byte(`{
		"event": "order.paid",
		"order_id": "ord-1",
		"order_status": "paid",
		"Customer": {"email": " Jane@Example.COM ", "full_name": "Jane"}
	}`)

	ev, err := KiwifyNormalizer{}.Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaid, ev.Kind)
	assert.Equal(t, "ord-1", ev.OrderID)
	assert.Equal(t, "jane@example.com", ev.Email)
}

func TestKiwifyNormalizeNestedOrderShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind domain.EventKind
		mail string
	}{
		{
			name: "order wrapper with webhook_event_type",
			body: `{"order": {"webhook_event_type": "order_approved", "customer": {"email": "a@b.c"}, "order_id": "o1"}}`,
			kind: domain.EventPaid,
			mail: "a@b.c",
		},
		{
			name: "data wrapper with status only",
			body: `{"data": {"status": "approved", "buyer": {"email": "x@y.com"}, "id": "o2"}}`,
			kind: domain.EventPaid,
			mail: "x@y.com",
		},
		{
			name: "top-level email and sale.approved",
			body: `{"event_type": "sale.approved", "email": "top@level.io", "order_id": "o3"}`,
			kind: domain.EventPaid,
			mail: "top@level.io",
		},
		{
			name: "chargeback folds into refunded",
			body: `{"event": "order.chargeback", "order_id": "o4", "customer": {"email": "c@d.e"}}`,
			kind: domain.EventRefunded,
			mail: "c@d.e",
		},
		{
			name: "refused order",
			body: `{"event": "order.refused", "Customer": {"email": "r@s.t"}}`,
			kind: domain.EventRefused,
			mail: "r@s.t",
		},
		{
			name: "subscription events are ignored",
			body: `{"event": "subscription.started", "Customer": {"email": "s@u.b"}}`,
			kind: domain.EventIgnored,
			mail: "s@u.b",
		},
		{
			name: "unknown event is ignored",
			body: `{"event": "pix.created", "order_status": "waiting_payment"}`,
			kind: domain.EventIgnored,
			mail: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := KiwifyNormalizer{}.Normalize([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, ev.Kind)
			assert.Equal(t, tc.mail, ev.Email)
		})
	}
}

func TestKiwifyNormalizeMalformedBody(t *testing.T) {
	_, err := KiwifyNormalizer{}.Normalize([]byte("not json"))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMercadoPagoNotificationReference(t *testing.T) {
	ev, err := MercadoPagoNormalizer{}.Normalize([]byte(`{"type": "payment", "action": "payment.updated", "data": {"id": 12345}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventUnknown, ev.Kind)
	assert.Equal(t, "12345", ev.PaymentID)
}

func TestMercadoPagoFullResource(t *testing.T) {
	ev, err := MercadoPagoNormalizer{}.Normalize([]byte(`{"id": 987, "status": "approved", "payer": {"email": "Payer@Mail.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaid, ev.Kind)
	assert.Equal(t, "987", ev.OrderID)
	assert.Equal(t, "payer@mail.com", ev.Email)
}

func TestMercadoPagoStatusVocabulary(t *testing.T) {
	cases := map[string]domain.EventKind{
		"approved":     domain.EventPaid,
		"rejected":     domain.EventRefused,
		"cancelled":    domain.EventRefused,
		"refunded":     domain.EventRefunded,
		"charged_back": domain.EventRefunded,
		"pending":      domain.EventIgnored,
		"in_process":   domain.EventIgnored,
	}
	for status, kind := range cases {
		assert.Equal(t, kind, classifyMercadoPagoStatus(status), "status %q", status)
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"order.paid"}`)
	secret := "shhh"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, body, good))
	assert.True(t, VerifySignature(secret, body, " "+good+"\n"))
	assert.False(t, VerifySignature(secret, body, "deadbeef"))
	assert.False(t, VerifySignature("other", body, good))
}

func TestForName(t *testing.T) {
	n, ok := ForName("kiwify")
	require.True(t, ok)
	assert.Equal(t, "kiwify", n.Name())

	n, ok = ForName("mercado-pago")
	require.True(t, ok)
	assert.Equal(t, "mercadopago", n.Name())

	_, ok = ForName("stripe")
	assert.False(t, ok)
}
