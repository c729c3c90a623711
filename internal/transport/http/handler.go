package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"iq-report-service/internal/app"
	"iq-report-service/internal/domain"
	"iq-report-service/internal/gateway/mercadopago"
	"iq-report-service/internal/provider"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Options carries the provider-facing knobs the handler needs beyond its
// collaborators.
type Options struct {
	// WebhookSecrets maps a provider route name to its shared HMAC secret.
	WebhookSecrets map[string]string
	// AllowUnsigned disables signature enforcement for local development.
	AllowUnsigned bool
	// KiwifyCheckoutURL is the hosted checkout page the client is sent to.
	KiwifyCheckoutURL string
	// PixAmount and PixDescription describe the single product on sale.
	PixAmount      float64
	PixDescription string
}

// Handler is the REST surface: session lifecycle, webhook intake, the
// report gate and the payment helper endpoints.
type Handler struct {
	sessions   *app.SessionService
	reconciler *app.Reconciler
	reports    *app.ReportGate
	payments   *mercadopago.Client
	opts       Options
	log        logrus.FieldLogger
}

func NewHandler(sessions *app.SessionService, reconciler *app.Reconciler, reports *app.ReportGate, payments *mercadopago.Client, opts Options, log logrus.FieldLogger) *Handler {
	return &Handler{
		sessions:   sessions,
		reconciler: reconciler,
		reports:    reports,
		payments:   payments,
		opts:       opts,
		log:        log,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", h.createSession)
	mux.HandleFunc("GET /sessions", h.getSession)
	mux.HandleFunc("PATCH /sessions", h.updateSession)
	mux.HandleFunc("POST /webhooks/{provider}", h.handleWebhook)
	mux.HandleFunc("GET /webhooks/{provider}", h.describeWebhook)
	mux.HandleFunc("GET /report", h.getReport)
	mux.HandleFunc("GET /questions", h.getQuestions)
	mux.HandleFunc("POST /payments/pix", h.createPixPayment)
	mux.HandleFunc("GET /payments/status", h.getPaymentStatus)
	mux.HandleFunc("POST /payments/verify", h.verifyPayment)
	mux.HandleFunc("GET /checkout-url", h.getCheckoutURL)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
}

type createSessionRequest struct {
	SessionID    string         `json:"sessionId"`
	Email        string         `json:"email"`
	Answers      map[int]string `json:"answers"`
	Score        *int           `json:"score"`
	DerivedIndex *int           `json:"derivedIndex"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", domain.ErrValidation))
		return
	}
	session, err := h.sessions.CreateSession(r.Context(), app.CreateSessionInput{
		SessionID:    req.SessionID,
		Email:        req.Email,
		Answers:      req.Answers,
		Score:        req.Score,
		DerivedIndex: req.DerivedIndex,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	email := r.URL.Query().Get("email")

	var (
		session domain.Session
		err     error
	)
	switch {
	case sessionID != "":
		session, err = h.sessions.GetBySessionID(r.Context(), sessionID)
	case email != "":
		session, err = h.sessions.GetLatestByEmail(r.Context(), email)
	default:
		writeError(w, fmt.Errorf("%w: sessionId or email is required", domain.ErrValidation))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type updateSessionRequest struct {
	SessionID     string `json:"sessionId"`
	Email         string `json:"email"`
	PaymentStatus string `json:"paymentStatus"`
	// Status is an accepted alias for PaymentStatus.
	Status string `json:"status"`
}

func (r updateSessionRequest) status() string {
	if r.PaymentStatus != "" {
		return r.PaymentStatus
	}
	return r.Status
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", domain.ErrValidation))
		return
	}
	if req.SessionID == "" && req.Email == "" {
		writeError(w, fmt.Errorf("%w: sessionId or email is required", domain.ErrValidation))
		return
	}
	session, err := h.sessions.UpdateStatus(r.Context(), req.SessionID, req.Email, domain.PaymentStatus(req.status()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	normalizer, ok := provider.ForName(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown provider " + name})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body", domain.ErrValidation))
		return
	}

	if err := h.checkSignature(normalizer, body, r.Header.Get(normalizer.SignatureHeader())); err != nil {
		h.log.WithFields(logrus.Fields{"provider": normalizer.Name()}).Warn("webhook signature rejected")
		writeError(w, err)
		return
	}

	event, err := normalizer.Normalize(body)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.reconciler.Process(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// checkSignature fails closed: a provider without a configured secret is
// rejected unless unsigned delivery was explicitly allowed.
func (h *Handler) checkSignature(n provider.Normalizer, body []byte, signature string) error {
	secret := h.opts.WebhookSecrets[n.Name()]
	if secret == "" {
		if h.opts.AllowUnsigned {
			return nil
		}
		return fmt.Errorf("%w: no webhook secret configured for %s", domain.ErrInvalidSignature, n.Name())
	}
	if !provider.VerifySignature(secret, body, signature) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidSignature, n.Name())
	}
	return nil
}

func (h *Handler) describeWebhook(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	normalizer, ok := provider.ForName(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown provider " + name})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"provider": normalizer.Name(),
		"status":   "listening",
	})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, fmt.Errorf("%w: session is required", domain.ErrValidation))
		return
	}
	report, err := h.reports.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) getQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.sessions.Questions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

type createPixRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
}

func (h *Handler) createPixPayment(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeError(w, fmt.Errorf("%w: mercado pago is not configured", domain.ErrMissingConfig))
		return
	}
	var req createPixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", domain.ErrValidation))
		return
	}
	if req.Email == "" || req.CPF == "" {
		writeError(w, fmt.Errorf("%w: email and cpf are required", domain.ErrValidation))
		return
	}
	payment, err := h.payments.CreatePixPayment(r.Context(), mercadopago.CreatePixRequest{
		Email:       req.Email,
		Name:        req.Name,
		CPF:         req.CPF,
		Amount:      h.opts.PixAmount,
		Description: h.opts.PixDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) getPaymentStatus(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeError(w, fmt.Errorf("%w: mercado pago is not configured", domain.ErrMissingConfig))
		return
	}
	paymentID := r.URL.Query().Get("payment_id")
	if paymentID == "" {
		writeError(w, fmt.Errorf("%w: payment_id is required", domain.ErrValidation))
		return
	}
	payment, err := h.payments.GetPayment(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

type verifyPaymentRequest struct {
	Email string `json:"email"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", domain.ErrValidation))
		return
	}
	session, err := h.reconciler.VerifyManually(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) getCheckoutURL(w http.ResponseWriter, r *http.Request) {
	if h.opts.KiwifyCheckoutURL == "" {
		writeError(w, fmt.Errorf("%w: kiwify checkout url is not configured", domain.ErrMissingConfig))
		return
	}
	checkout, err := url.Parse(h.opts.KiwifyCheckoutURL)
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad checkout url", domain.ErrMissingConfig))
		return
	}
	q := checkout.Query()
	if name := r.URL.Query().Get("name"); name != "" {
		q.Set("name", name)
	}
	if email := r.URL.Query().Get("email"); email != "" {
		q.Set("email", email)
	}
	checkout.RawQuery = q.Encode()
	writeJSON(w, http.StatusOK, map[string]string{"url": checkout.String()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSession):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
