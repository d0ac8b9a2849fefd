package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httputil"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/middleware"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// SessionHandler handles HTTP requests for checkout session endpoints.
type SessionHandler struct {
	sessions       repository.SessionRepository
	cart           *service.CartService
	checkout       *service.CheckoutService
	customers      *service.CustomerService
	defaultCashier string
	logger         *slog.Logger
	now            func() time.Time
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(
	sessions repository.SessionRepository,
	cart *service.CartService,
	checkout *service.CheckoutService,
	customers *service.CustomerService,
	defaultCashier string,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		cart:           cart,
		checkout:       checkout,
		customers:      customers,
		defaultCashier: defaultCashier,
		logger:         logger,
		now:            time.Now,
	}
}

// --- Request DTOs ---

// CreateSessionRequest is the optional body of POST /api/v1/sessions.
type CreateSessionRequest struct {
	CashierName string `json:"cashier_name" validate:"omitempty,max=100"`
	BranchID    int64  `json:"branch_id" validate:"omitempty,gt=0"`
}

// SelectBranchRequest is the JSON request body for choosing the branch.
type SelectBranchRequest struct {
	BranchID int64 `json:"branch_id" validate:"required,gt=0"`
}

// SelectCustomerRequest is the JSON request body for choosing the customer.
type SelectCustomerRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
}

// SetDiscountRequest is the JSON request body for the absolute discount.
type SetDiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// SetPaymentMethodRequest is the JSON request body for the payment method.
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// AddItemRequest is the JSON request body for adding one unit of a product.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
// Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// AttachPrescriptionRequest is the JSON request body for linking a prescription to a line.
type AttachPrescriptionRequest struct {
	PrescriptionID int64 `json:"prescription_id" validate:"required,gt=0"`
}

// CreatePrescriptionRequest is the JSON request body for registering a
// prescription for the session's customer.
type CreatePrescriptionRequest struct {
	DoctorName      string `json:"doctor_name" validate:"required,max=150"`
	DoctorLicense   string `json:"doctor_license" validate:"omitempty,max=50"`
	DoctorSpecialty string `json:"doctor_specialty" validate:"omitempty,max=100"`
	IssueDate       string `json:"issue_date" validate:"required,datetime=2006-01-02"`
	ExpirationDate  string `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	Diagnosis       string `json:"diagnosis" validate:"omitempty,max=500"`
	Notes           string `json:"notes" validate:"omitempty,max=500"`
	AttachTo        int64  `json:"attach_to_product_id" validate:"omitempty,gt=0"`
}

// SetNotesRequest is the JSON request body for the sale notes.
type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// --- Handlers ---

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	cashier := strings.TrimSpace(req.CashierName)
	if cashier == "" {
		cashier = middleware.UserIDFromContext(r.Context())
	}
	if cashier == "" {
		cashier = h.defaultCashier
	}

	sess := domain.NewSession(uuid.NewString(), cashier, h.now())
	if req.BranchID > 0 {
		if err := h.checkout.SelectBranch(r.Context(), sess, req.BranchID); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "session created",
		slog.String("session_id", sess.ID),
		slog.String("cashier", cashier),
	)
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	httputil.WriteData(w, http.StatusCreated, newSessionView(h.checkout.Snapshot(sess)))
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, http.StatusOK, sessionFromContext(r.Context()))
}

// AbandonSession handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	h.checkout.Abandon(r.Context(), sess)
	if err := h.sessions.Delete(r.Context(), sess.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectBranch handles PUT /api/v1/sessions/{id}/branch
func (h *SessionHandler) SelectBranch(w http.ResponseWriter, r *http.Request) {
	var req SelectBranchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.checkout.SelectBranch(r.Context(), sess, req.BranchID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// SelectCustomer handles PUT /api/v1/sessions/{id}/customer
func (h *SessionHandler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	var req SelectCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if _, err := h.customers.SelectCustomer(r.Context(), sess, req.CustomerID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// ClearCustomer handles DELETE /api/v1/sessions/{id}/customer
func (h *SessionHandler) ClearCustomer(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := h.customers.ClearCustomer(r.Context(), sess); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// SetDiscount handles PUT /api/v1/sessions/{id}/discount
func (h *SessionHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req SetDiscountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.checkout.SetDiscount(r.Context(), sess, req.Discount); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// SetPaymentMethod handles PUT /api/v1/sessions/{id}/payment-method
func (h *SessionHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req SetPaymentMethodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown payment method: "+req.PaymentMethod), h.logger)
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.checkout.SetPaymentMethod(r.Context(), sess, method); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// SetNotes handles PUT /api/v1/sessions/{id}/notes
func (h *SessionHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req SetNotesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.checkout.SetNotes(r.Context(), sess, req.Notes); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// AddItem handles POST /api/v1/sessions/{id}/items
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if _, err := h.cart.AddProduct(r.Context(), sess, req.ProductID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// UpdateItemQuantity handles PUT /api/v1/sessions/{id}/items/{productId}
func (h *SessionHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.cart.UpdateQuantity(r.Context(), sess, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// RemoveItem handles DELETE /api/v1/sessions/{id}/items/{productId}
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.cart.RemoveProduct(r.Context(), sess, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// AttachPrescription handles PUT /api/v1/sessions/{id}/items/{productId}/prescription
func (h *SessionHandler) AttachPrescription(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req AttachPrescriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFromContext(r.Context())
	if err := h.cart.AttachPrescription(r.Context(), sess, productID, req.PrescriptionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// ListPrescriptions handles GET /api/v1/sessions/{id}/prescriptions
func (h *SessionHandler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	ps, err := h.customers.ListPrescriptions(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newPrescriptionViews(ps))
}

// CreatePrescription handles POST /api/v1/sessions/{id}/prescriptions
func (h *SessionHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var req CreatePrescriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The validator already checked both layouts.
	issued, _ := time.Parse(dateLayout, req.IssueDate)
	expires, _ := time.Parse(dateLayout, req.ExpirationDate)

	sess := sessionFromContext(r.Context())
	p, err := h.customers.CreatePrescription(r.Context(), sess, domain.NewPrescription{
		DoctorName:      req.DoctorName,
		DoctorLicense:   req.DoctorLicense,
		DoctorSpecialty: req.DoctorSpecialty,
		IssueDate:       issued,
		ExpirationDate:  expires,
		Diagnosis:       req.Diagnosis,
		Notes:           req.Notes,
	}, req.AttachTo)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, newPrescriptionView(*p))
}

// Checkout handles POST /api/v1/sessions/{id}/checkout
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	sale, err := h.checkout.Submit(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, checkoutView{
		Sale:    newSaleView(*sale),
		Session: newSessionView(h.checkout.Snapshot(sess)),
	})
}

// Acknowledge handles POST /api/v1/sessions/{id}/checkout/ack
func (h *SessionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	h.checkout.Acknowledge(r.Context(), sess)
	h.writeSession(w, http.StatusOK, sess)
}

func (h *SessionHandler) writeSession(w http.ResponseWriter, status int, sess *domain.Session) {
	httputil.WriteData(w, status, newSessionView(h.checkout.Snapshot(sess)))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid product id: " + raw},
		})
		return 0, false
	}
	return id, true
}
