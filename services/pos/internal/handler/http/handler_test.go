package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/health"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/middleware"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/nationalid"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/pricing"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository/memory"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// ============================================================================
// Fixture
// ============================================================================

type fixture struct {
	router        http.Handler
	sessions      *memory.SessionStore
	catalog       *fakeCatalog
	branches      *fakeBranches
	stock         *fakeStock
	sales         *fakeSales
	customers     *fakeCustomers
	prescriptions *fakePrescriptions
	reporting     *fakeReporting
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, nationalid.RegisterValidation())

	log := testLogger()
	f := &fixture{
		sessions: memory.NewSessionStore(time.Hour, log),
		catalog: &fakeCatalog{products: map[int64]*domain.Product{
			5: product(5, "10.00", false),
			6: product(6, "4.50", true),
		}},
		branches: &fakeBranches{branches: []domain.Branch{
			{ID: 7, Code: "SUC-07", Name: "Centro", Status: domain.BranchStatusActive},
			{ID: 8, Code: "SUC-08", Name: "Norte", Status: "INACTIVE"},
		}},
		stock: &fakeStock{quantities: map[int64]int{5: 10, 6: 3}},
		sales: &fakeSales{},
		customers: &fakeCustomers{customers: map[int64]*domain.Customer{
			42: {ID: 42, IdentificationNumber: "1710034065", FirstName: "Juan", LastName: "Pérez", Email: "juan@example.com", Active: true},
		}},
		prescriptions: &fakePrescriptions{byCustomer: map[int64][]domain.Prescription{
			42: {{ID: 9, CustomerID: 42, DoctorName: "Dr. Ruiz", Status: domain.PrescriptionActive, ExpirationDate: time.Now().AddDate(0, 1, 0)}},
		}, nextID: 70},
		reporting: &fakeReporting{},
	}

	calc, err := pricing.NewCalculator(decimal.RequireFromString("0.12"))
	require.NoError(t, err)

	cart := service.NewCartService(f.catalog, f.stock, log)
	checkout := service.NewCheckoutService(calc, f.sales, nil, log, 5*time.Second)
	customers := service.NewCustomerService(f.customers, f.prescriptions, log)
	dashboard := service.NewDashboardService(f.reporting, nil, log)
	catalog := service.NewCatalogService(f.catalog, f.branches, log)

	f.router = NewRouter(
		f.sessions,
		NewSessionHandler(f.sessions, cart, checkout, customers, "Cajero", log),
		NewCustomerHandler(customers, log),
		NewCatalogHandler(catalog, log),
		NewReportHandler(dashboard, checkout, log),
		health.NewHandler(),
		log,
		RouterConfig{CORS: middleware.DefaultCORSConfig(), DashboardMaxAge: 30},
	)
	return f
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (f *fixture) newSession(t *testing.T) string {
	t.Helper()
	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[sessionView](t, env).ID
}

// readySession returns a session with branch 7 and customer 42 selected.
func (f *fixture) readySession(t *testing.T) string {
	t.Helper()
	id := f.newSession(t)
	rec, _ := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/branch", map[string]any{"branch_id": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/customer", map[string]any{"customer_id": 42})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return id
}

// ============================================================================
// Sessions
// ============================================================================

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"cashier_name": "  Ana  "})
	require.Equal(t, http.StatusCreated, rec.Code)

	view := decodeData[sessionView](t, env)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Ana", view.CashierName)
	assert.Equal(t, "IDLE", view.State)
	assert.Equal(t, "EFECTIVO", view.PaymentMethod)
	assert.Equal(t, "0.00", view.Summary.Total)
	assert.Equal(t, "0.12", view.TaxRate)
	assert.Empty(t, view.Items)
	assert.Equal(t, "/api/v1/sessions/"+view.ID, rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 1, f.sessions.Len())
}

func TestCreateSession_DefaultCashier(t *testing.T) {
	f := newFixture(t)

	_, env := f.do(t, http.MethodPost, "/api/v1/sessions", nil)
	assert.Equal(t, "Cajero", decodeData[sessionView](t, env).CashierName)
}

func TestCreateSession_WithBranch(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"branch_id": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(3), decodeData[sessionView](t, env).BranchID)
}

func TestGetSession_InvalidID(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestGetSession_Unknown(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/sessions/550e8400-e29b-41d4-a716-446655440000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAbandonSession(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.sessions.Len())

	rec, _ = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectBranch_Validation(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/branch", map[string]any{"branch_id": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestSelectBranch_MalformedBody(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/branch", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestContentTypeJSON_RejectsOtherTypes(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/branch", strings.NewReader("branch_id=7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestSelectCustomer_LoadsUsablePrescriptions(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.prescriptions.byCustomer[42] = []domain.Prescription{
		{ID: 1, CustomerID: 42, DoctorName: "Dr. Vega", Status: domain.PrescriptionActive, IssueDate: now.AddDate(0, 0, -5), ExpirationDate: now.AddDate(0, 1, 0)},
		{ID: 2, CustomerID: 42, DoctorName: "Dr. Vega", Status: domain.PrescriptionUsed, IssueDate: now.AddDate(0, 0, -5), ExpirationDate: now.AddDate(0, 1, 0)},
		{ID: 3, CustomerID: 42, DoctorName: "Dr. Vega", Status: domain.PrescriptionActive, IssueDate: now.AddDate(0, -2, 0), ExpirationDate: now.AddDate(0, 0, -1)},
	}
	id := f.newSession(t)

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/customer", map[string]any{"customer_id": 42})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeData[sessionView](t, env)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Juan Pérez", view.Customer.FullName)
	require.Len(t, view.Prescriptions, 1)
	assert.Equal(t, int64(1), view.Prescriptions[0].ID)

	rec, env = f.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/customer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeData[sessionView](t, env)
	assert.Nil(t, view.Customer)
	assert.Empty(t, view.Prescriptions)
}

func TestSelectCustomer_Unknown(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	rec, _ := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/customer", map[string]any{"customer_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Cart
// ============================================================================

func TestAddItem_RequiresBranch(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_BRANCH_SELECTED", env.Error.Code)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.stock.quantities[5] = 1
	id := f.readySession(t)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/items/5", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[sessionView](t, env)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "30.00", view.Items[0].Subtotal)
	assert.Equal(t, 3, view.ItemCount)

	rec, env = f.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/items/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[sessionView](t, env).Items)
}

func TestUpdateItem_InvalidProductID(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/items/abc", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	rec, env := f.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/items/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "LINE_NOT_FOUND", env.Error.Code)
}

func TestSetPaymentMethod(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/payment-method", map[string]any{"payment_method": "tarjeta"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TARJETA", decodeData[sessionView](t, env).PaymentMethod)

	rec, env = f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/payment-method", map[string]any{"payment_method": "CHEQUE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestSetDiscount_ExceedingTotal(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/discount", map[string]any{"discount": "50"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_DISCOUNT", env.Error.Code)

	rec, env = f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/discount", map[string]any{"discount": "1.20"})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData[sessionView](t, env).Summary
	assert.Equal(t, "1.20", summary.Discount)
	assert.Equal(t, "10.00", summary.Total)
}

func TestSetNotes(t *testing.T) {
	f := newFixture(t)
	id := f.newSession(t)

	rec, _ := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/notes", map[string]any{"notes": "entrega a domicilio"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/notes", map[string]any{"notes": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

// ============================================================================
// Prescriptions
// ============================================================================

func TestCreatePrescription_AttachesToLine(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 6})

	issued := time.Now().Format(dateLayout)
	expires := time.Now().AddDate(0, 1, 0).Format(dateLayout)
	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/prescriptions", map[string]any{
		"doctor_name":          "Dra. Salazar",
		"issue_date":           issued,
		"expiration_date":      expires,
		"attach_to_product_id": 6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeData[prescriptionView](t, env)
	assert.Equal(t, int64(71), p.ID)
	assert.Equal(t, expires, p.ExpirationDate)

	rec, env = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[sessionView](t, env)
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].PrescriptionID)
	assert.Equal(t, int64(71), *view.Items[0].PrescriptionID)

	rec, env = f.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/prescriptions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[[]prescriptionView](t, env)
	require.Len(t, listed, 2)
	assert.Equal(t, int64(71), listed[1].ID)
}

func TestCreatePrescription_BadDate(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/prescriptions", map[string]any{
		"doctor_name":     "Dra. Salazar",
		"issue_date":      "10/03/2025",
		"expiration_date": "2025-04-10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAttachPrescription(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 6})

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/items/6/prescription", map[string]any{"prescription_id": 9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeData[sessionView](t, env)
	require.NotNil(t, view.Items[0].PrescriptionID)
	assert.Equal(t, int64(9), *view.Items[0].PrescriptionID)
}

func TestAttachPrescription_UnknownPrescriptionRejected(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 6})

	rec, env := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/items/6/prescription", map[string]any{"prescription_id": 999999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PRESCRIPTION_NOT_USABLE", env.Error.Code)

	rec, env = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_PRESCRIPTION", env.Error.Code)
	assert.Empty(t, f.sales.submissions)
}

// ============================================================================
// Checkout
// ============================================================================

func TestCheckout_FullFlow(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	for i := 0; i < 2; i++ {
		rec, _ := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	out := decodeData[checkoutView](t, env)
	assert.Equal(t, "VTA-1001", out.Sale.SaleNumber)
	assert.Equal(t, "20.00", out.Sale.Subtotal)
	assert.Equal(t, "2.40", out.Sale.Tax)
	assert.Equal(t, "22.40", out.Sale.Total)
	assert.Empty(t, out.Session.Items)
	assert.Equal(t, "0.00", out.Session.Summary.Total)
	require.NotNil(t, out.Session.LastSale)
	assert.Equal(t, int64(1001), out.Session.LastSale.ID)
	assert.Equal(t, int64(7), out.Session.BranchID)
	assert.Equal(t, "SUCCEEDED", out.Session.State)
	assert.Nil(t, out.Session.Customer)

	require.Equal(t, 1, f.sales.count())
	sub := f.sales.submissions[0]
	assert.Equal(t, int64(42), sub.CustomerID)
	assert.Equal(t, int64(7), sub.BranchID)
	assert.Equal(t, "Cajero", sub.CashierName)
	require.Len(t, sub.Lines, 1)
	assert.Equal(t, 2, sub.Lines[0].Quantity)

	rec, env = f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout/ack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IDLE", decodeData[sessionView](t, env).State)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMPTY_CART", env.Error.Code)
	assert.Empty(t, f.sales.submissions)
}

func TestCheckout_MissingPrescription(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 6})

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_PRESCRIPTION", env.Error.Code)
	assert.Empty(t, f.sales.submissions)
}

func TestCheckout_RemoteValidationKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.sales.err = apperrors.RemoteValidation("sales", "", map[string]string{"paymentMethod": "not accepted"})
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})

	rec, env := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REMOTE_VALIDATION", env.Error.Code)
	assert.Equal(t, "paymentMethod: not accepted", env.Error.Message)
	assert.Equal(t, "not accepted", env.Error.Fields["paymentMethod"])

	rec, env = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[sessionView](t, env)
	assert.Len(t, view.Items, 1)
	require.NotNil(t, view.LastError)
	assert.Equal(t, "REMOTE_VALIDATION", view.LastError.Code)
}

// ============================================================================
// Customers
// ============================================================================

func TestSearchCustomer(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/customers/search?identification=1710034065", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), decodeData[customerView](t, env).ID)

	rec, env = f.do(t, http.MethodGet, "/api/v1/customers/search?identification=2400000002", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreateCustomer(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/customers", map[string]any{
		"identification_number": "2400000002",
		"first_name":            " María ",
		"last_name":             "Andrade",
		"email":                 "maria@example.com",
		"birth_date":            "1990-05-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeData[customerView](t, env)
	assert.Equal(t, "María Andrade", c.FullName)
	assert.True(t, c.Active)

	require.Len(t, f.customers.created, 1)
	created := f.customers.created[0]
	assert.Equal(t, "María", created.FirstName)
	require.NotNil(t, created.BirthDate)
	assert.Equal(t, "1990-05-01", created.BirthDate.Format(dateLayout))
}

func TestCreateCustomer_InvalidIdentification(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/customers", map[string]any{
		"identification_number": "1710034066",
		"first_name":            "María",
		"last_name":             "Andrade",
		"email":                 "maria@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "identification_number")
	assert.Empty(t, f.customers.created)
}

// ============================================================================
// Catalog
// ============================================================================

func TestSearchProducts(t *testing.T) {
	f := newFixture(t)
	retired := product(9, "1.00", false)
	retired.Status = "INACTIVE"
	f.catalog.products[9] = retired

	rec, env := f.do(t, http.MethodGet, "/api/v1/products?q=producto", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	products := decodeData[[]productView](t, env)
	require.Len(t, products, 2)
	assert.Equal(t, int64(5), products[0].ID)
	assert.Equal(t, "10.00", products[0].BasePrice)
	assert.True(t, products[1].RequiresPrescription)
}

func TestSearchProducts_QueryTooLong(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/products?q="+strings.Repeat("a", 101), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
}

func TestListBranches(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/branches", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	branches := decodeData[[]branchView](t, env)
	require.Len(t, branches, 1)
	assert.Equal(t, "SUC-07", branches[0].Code)
}

// ============================================================================
// Reports
// ============================================================================

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private, max-age=30", rec.Header().Get("Cache-Control"))

	d := decodeData[dashboardView](t, env)
	assert.Equal(t, "1520.40", d.Sales.TotalRevenue)
	assert.Equal(t, int64(37), d.Sales.TotalSales)
	assert.Equal(t, 1, f.reporting.calls)
}

func TestListSales(t *testing.T) {
	f := newFixture(t)
	id := f.readySession(t)
	f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/items", map[string]any{"product_id": 5})
	rec, _ := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := f.do(t, http.MethodGet, "/api/v1/sales?page=1&per_page=10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Data       []saleView `json:"data"`
		TotalCount int        `json:"total_count"`
		Page       int        `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "11.20", page.Data[0].Total)
}

func TestHealthLive(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
