package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httputil"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// CustomerHandler handles customer lookup and registration.
type CustomerHandler struct {
	service *service.CustomerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a new customer HTTP handler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateCustomerRequest is the JSON request body for registering a customer.
type CreateCustomerRequest struct {
	IdentificationNumber string `json:"identification_number" validate:"required,ec_ci"`
	IdentificationType   string `json:"identification_type" validate:"omitempty,oneof=CEDULA RUC PASAPORTE"`
	FirstName            string `json:"first_name" validate:"required,max=100"`
	LastName             string `json:"last_name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"omitempty,numeric,min=9,max=10"`
	Address              string `json:"address" validate:"omitempty,max=200"`
	City                 string `json:"city" validate:"omitempty,max=100"`
	BirthDate            string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := domain.NewCustomer{
		IdentificationNumber: req.IdentificationNumber,
		IdentificationType:   req.IdentificationType,
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                req.Email,
		Phone:                req.Phone,
		Address:              req.Address,
		City:                 req.City,
	}
	if req.BirthDate != "" {
		birth, _ := time.Parse(dateLayout, req.BirthDate)
		in.BirthDate = &birth
	}

	c, err := h.service.CreateCustomer(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, newCustomerView(c))
}

// SearchCustomer handles GET /api/v1/customers/search?identification=
func (h *CustomerHandler) SearchCustomer(w http.ResponseWriter, r *http.Request) {
	identification := r.URL.Query().Get("identification")
	c, err := h.service.SearchCustomer(r.Context(), identification)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if c == nil {
		httputil.WriteError(w, r, apperrors.NotFound("customer", identification), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCustomerView(c))
}

// ReportHandler serves the dashboard and the sales history.
type ReportHandler struct {
	dashboard *service.DashboardService
	checkout  *service.CheckoutService
	logger    *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(dashboard *service.DashboardService, checkout *service.CheckoutService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		dashboard: dashboard,
		checkout:  checkout,
		logger:    logger,
	}
}

// Dashboard handles GET /api/v1/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newDashboardView(d))
}

// ListSales handles GET /api/v1/sales?page=&per_page=
func (h *ReportHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	result, err := h.checkout.SalesHistory(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, pagination.NewResult(newSaleViews(result.Data), result.TotalCount, params))
}
