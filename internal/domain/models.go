package domain

import (
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state of a quiz session's payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusPaid     PaymentStatus = "paid"
	StatusRefused  PaymentStatus = "refused"
	StatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusRefused, StatusRefunded:
		return true
	}
	return false
}

// Session is one quiz attempt: answers, derived outcome and payment state.
// Score and DerivedIndex are set at creation and never recomputed.
type Session struct {
	SessionID       string         `json:"sessionId"`
	Email           string         `json:"email"`
	Answers         map[int]string `json:"answers"`
	Score           int            `json:"score"`
	DerivedIndex    int            `json:"derivedIndex"`
	PaymentStatus   PaymentStatus  `json:"paymentStatus"`
	ExternalOrderID string         `json:"externalOrderId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Paid reports whether the session's report may be disclosed.
func (s Session) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// NormalizeEmail lower-cases and trims an email so it can serve as the
// reconciliation join key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EventKind classifies an inbound payment event after normalization.
type EventKind string

const (
	EventPaid     EventKind = "paid"
	EventRefused  EventKind = "refused"
	EventRefunded EventKind = "refunded"
	EventIgnored  EventKind = "ignored"
	// EventUnknown means the payload identified a payment but carried no
	// status; the reconciler must look the status up at the provider.
	EventUnknown EventKind = "unknown"
)

// PaymentEvent is the provider-independent view of a webhook payload.
type PaymentEvent struct {
	Provider  string    `json:"provider"`
	Kind      EventKind `json:"kind"`
	RawStatus string    `json:"rawStatus,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	Email     string    `json:"email,omitempty"`
	// PaymentID is set by providers whose notifications only reference a
	// payment resource (Mercado Pago); the reconciler resolves it.
	PaymentID string `json:"paymentId,omitempty"`
}

// ReconcileOutcome describes what a webhook delivery did.
type ReconcileOutcome struct {
	Applied   bool          `json:"applied"`
	Fallback  bool          `json:"fallback"`
	SessionID string        `json:"sessionId,omitempty"`
	Status    PaymentStatus `json:"status,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// Question is one multiple-choice question of the test.
type Question struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  string   `json:"-"`
}

// QuestionBank is the fixed set of questions the test is scored against.
type QuestionBank struct {
	Questions []Question `json:"questions"`
}

// Total returns the number of questions in the bank.
func (b QuestionBank) Total() int { return len(b.Questions) }

// Outcome is the report payload disclosed once a session is paid.
type Outcome struct {
	SessionID      string    `json:"sessionId"`
	Email          string    `json:"email"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	DerivedIndex   int       `json:"derivedIndex"`
	Classification string    `json:"classification"`
	CreatedAt      time.Time `json:"createdAt"`
}
