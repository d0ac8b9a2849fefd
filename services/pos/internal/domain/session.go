package domain

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutState is the position of a session in the checkout workflow.
type CheckoutState string

const (
	StateIdle       CheckoutState = "IDLE"
	StateValidating CheckoutState = "VALIDATING"
	StateSubmitting CheckoutState = "SUBMITTING"
	StateSucceeded  CheckoutState = "SUCCEEDED"
	StateFailed     CheckoutState = "FAILED"
)

// Busy reports whether a submission is underway.
func (s CheckoutState) Busy() bool {
	return s == StateValidating || s == StateSubmitting
}

// Terminal reports whether the state holds a result awaiting acknowledgment.
func (s CheckoutState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Session is one cashier's checkout workflow: the selections, the cart and
// the state of the last submission. Callers hold the lock while reading or
// mutating fields and release it around network calls; Generation tells them
// whether the session was reset meanwhile.
type Session struct {
	mu sync.Mutex

	ID            string
	CashierName   string
	BranchID      int64
	Customer      *Customer
	Prescriptions []Prescription
	Cart          Cart
	Discount      decimal.Decimal
	PaymentMethod PaymentMethod
	Notes         string

	State      CheckoutState
	LastSale   *Sale
	LastError  error
	Generation uint64

	RecentSales []Sale
	CreatedAt   time.Time

	lastActive atomic.Int64
}

// NewSession returns an idle session with the default payment method.
func NewSession(id, cashier string, now time.Time) *Session {
	s := &Session{
		ID:            id,
		CashierName:   cashier,
		PaymentMethod: DefaultPaymentMethod,
		State:         StateIdle,
		CreatedAt:     now,
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records activity. It does not require the lock.
func (s *Session) Touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// LastActive returns the time of the most recent Touch.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// HasBranch reports whether a branch was selected.
func (s *Session) HasBranch() bool {
	return s.BranchID > 0
}

// CustomerID returns the selected customer's id, or zero.
func (s *Session) CustomerID() int64 {
	if s.Customer == nil {
		return 0
	}
	return s.Customer.ID
}

// CheckMutable fails while a submission is underway.
func (s *Session) CheckMutable() error {
	if s.State.Busy() {
		return ErrAlreadyInProgress
	}
	return nil
}

// BeginSubmit moves the session into Validating. A previous result is
// acknowledged implicitly.
func (s *Session) BeginSubmit() error {
	if s.State.Busy() {
		return ErrAlreadyInProgress
	}
	s.Acknowledge()
	s.State = StateValidating
	return nil
}

// Acknowledge returns a terminal session to Idle and forgets the last error.
func (s *Session) Acknowledge() {
	if !s.State.Terminal() {
		return
	}
	s.State = StateIdle
	s.LastError = nil
}

// Succeed records a completed sale.
func (s *Session) Succeed(sale Sale) {
	s.State = StateSucceeded
	s.LastSale = &sale
	s.LastError = nil
}

// Fail records a failed submission. The cart is left untouched.
func (s *Session) Fail(err error) {
	s.State = StateFailed
	s.LastError = err
}

// ClearAfterSale empties the cart and drops the customer and discount. The
// branch and payment method stay selected for the next sale.
func (s *Session) ClearAfterSale() {
	s.Cart.Clear()
	s.Discount = decimal.Zero
	s.Customer = nil
	s.Prescriptions = nil
	s.Notes = ""
}

// Reset abandons everything in the session and invalidates in-flight work.
func (s *Session) Reset() {
	s.ClearAfterSale()
	s.BranchID = 0
	s.PaymentMethod = DefaultPaymentMethod
	s.State = StateIdle
	s.LastSale = nil
	s.LastError = nil
	s.Generation++
}

// FindPrescription looks up a prescription loaded for the selected customer.
func (s *Session) FindPrescription(id int64) (Prescription, bool) {
	for _, p := range s.Prescriptions {
		if p.ID == id {
			return p, true
		}
	}
	return Prescription{}, false
}

// UsablePrescription returns the loaded prescription id when it belongs to
// the selected customer and is still usable at now.
func (s *Session) UsablePrescription(id int64, now time.Time) (Prescription, error) {
	p, ok := s.FindPrescription(id)
	if !ok || s.Customer == nil || p.CustomerID != s.Customer.ID || !p.Usable(now) {
		return Prescription{}, ErrPrescriptionNotUsable.WithMessage(
			"prescription %d is not an active prescription of the selected customer", id)
	}
	return p, nil
}
