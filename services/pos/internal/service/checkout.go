package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/pagination"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/tracing"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/pricing"
)

const (
	defaultSubmitTimeout = 30 * time.Second
	recentSalesSize      = 10
)

// CheckoutService drives a session from a filled cart to a recorded sale.
type CheckoutService struct {
	calc          *pricing.Calculator
	sales         SalesGateway
	events        EventPublisher
	logger        *slog.Logger
	tracer        trace.Tracer
	submitTimeout time.Duration
}

// NewCheckoutService creates a new checkout service. submitTimeout bounds the
// sale creation call; zero selects a 30 second default. events may be nil.
func NewCheckoutService(
	calc *pricing.Calculator,
	sales SalesGateway,
	events EventPublisher,
	logger *slog.Logger,
	submitTimeout time.Duration,
) *CheckoutService {
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	return &CheckoutService{
		calc:          calc,
		sales:         sales,
		events:        events,
		logger:        logger,
		tracer:        tracing.Tracer("pos-service"),
		submitTimeout: submitTimeout,
	}
}

// Snapshot is a consistent copy of a session taken under its lock.
type Snapshot struct {
	ID            string
	CashierName   string
	BranchID      int64
	Customer      *domain.Customer
	Prescriptions []domain.Prescription
	Lines         []domain.CartLine
	ItemCount     int
	TaxRate       decimal.Decimal
	Summary       domain.MoneySummary
	SummaryErr    error
	Discount      decimal.Decimal
	PaymentMethod domain.PaymentMethod
	State         domain.CheckoutState
	LastSale      *domain.Sale
	LastError     error
	RecentSales   []domain.Sale
}

// Snapshot copies the session and computes its rounded money summary. When
// the discount no longer fits the cart, SummaryErr carries ErrInvalidDiscount.
func (s *CheckoutService) Snapshot(sess *domain.Session) Snapshot {
	sess.Lock()
	defer sess.Unlock()

	snap := Snapshot{
		ID:            sess.ID,
		CashierName:   sess.CashierName,
		BranchID:      sess.BranchID,
		Lines:         sess.Cart.Lines(),
		ItemCount:     sess.Cart.ItemCount(),
		TaxRate:       s.calc.TaxRate(),
		Discount:      sess.Discount,
		PaymentMethod: sess.PaymentMethod,
		State:         sess.State,
		LastError:     sess.LastError,
		Prescriptions: append([]domain.Prescription(nil), sess.Prescriptions...),
		RecentSales:   append([]domain.Sale(nil), sess.RecentSales...),
	}
	if sess.Customer != nil {
		c := *sess.Customer
		snap.Customer = &c
	}
	if sess.LastSale != nil {
		sale := *sess.LastSale
		snap.LastSale = &sale
	}

	summary, err := s.calc.Summarize(snap.Lines, sess.Discount)
	snap.Summary = summary.Rounded()
	snap.SummaryErr = err
	return snap
}

// SetDiscount sets the absolute discount. The new value must not be negative
// and must not push the current total below zero.
func (s *CheckoutService) SetDiscount(_ context.Context, sess *domain.Session, discount decimal.Decimal) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	if discount.IsNegative() {
		return domain.ErrInvalidDiscount.WithMessage("discount must not be negative")
	}
	if _, err := s.calc.Summarize(sess.Cart.Lines(), discount); err != nil {
		return err
	}
	sess.Discount = discount
	return nil
}

// SetPaymentMethod selects how the sale will be paid.
func (s *CheckoutService) SetPaymentMethod(_ context.Context, sess *domain.Session, method domain.PaymentMethod) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	sess.PaymentMethod = method
	return nil
}

// SetNotes records free-text notes sent with the sale.
func (s *CheckoutService) SetNotes(_ context.Context, sess *domain.Session, notes string) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	sess.Notes = strings.TrimSpace(notes)
	return nil
}

// SelectBranch sets the branch the sale is made from.
func (s *CheckoutService) SelectBranch(_ context.Context, sess *domain.Session, branchID int64) error {
	if branchID <= 0 {
		return apperrors.InvalidInput("branch id must be positive")
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	sess.BranchID = branchID
	return nil
}

// Acknowledge clears a Succeeded or Failed result.
func (s *CheckoutService) Acknowledge(_ context.Context, sess *domain.Session) {
	sess.Lock()
	defer sess.Unlock()
	sess.Acknowledge()
}

// Abandon resets the session. A submission still in flight completes in the
// background and its result is discarded.
func (s *CheckoutService) Abandon(ctx context.Context, sess *domain.Session) {
	sess.Lock()
	defer sess.Unlock()

	inFlight := sess.State == domain.StateSubmitting
	sess.Reset()

	s.logger.InfoContext(ctx, "session abandoned",
		slog.String("session_id", sess.ID),
		slog.Bool("submission_in_flight", inFlight),
	)
}

// Submit validates the session, sends exactly one sale to the sales service
// and records the outcome. On success the cart, discount and customer are
// cleared. On failure nothing in the cart changes and the error is returned
// and kept on the session until acknowledged.
func (s *CheckoutService) Submit(ctx context.Context, sess *domain.Session) (*domain.Sale, error) {
	sess.Lock()
	if err := sess.BeginSubmit(); err != nil {
		sess.Unlock()
		return nil, err
	}

	sub, err := s.prepare(sess)
	if err != nil {
		sess.State = domain.StateIdle
		sess.Unlock()
		CheckoutTotal.WithLabelValues(resultRejected).Inc()
		return nil, err
	}

	sess.State = domain.StateSubmitting
	gen := sess.Generation
	sessionID := sess.ID
	sess.Unlock()

	// Client disconnects do not cancel a sale once it is sent.
	detached := context.WithoutCancel(ctx)

	start := time.Now()
	sale, sendErr := s.send(detached, sessionID, sub)

	result := resultSucceeded
	if sendErr != nil {
		result = resultFailed
	}

	sess.Lock()
	if sess.Generation != gen {
		sess.Unlock()
		CheckoutTotal.WithLabelValues(resultDiscarded).Inc()
		s.logger.InfoContext(ctx, "discarding result of abandoned checkout",
			slog.String("session_id", sessionID),
			slog.String("result", result),
		)
		return nil, domain.ErrSessionReset
	}

	CheckoutTotal.WithLabelValues(result).Inc()
	CheckoutDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if sendErr != nil {
		sess.Fail(sendErr)
		sess.Unlock()

		s.logger.WarnContext(ctx, "checkout failed",
			slog.String("session_id", sessionID),
			slog.String("error", sendErr.Error()),
		)
		s.publishFailed(detached, sessionID, sub, sendErr)
		return nil, sendErr
	}

	sess.Succeed(*sale)
	sess.ClearAfterSale()
	sess.RecentSales = prependSale(sess.RecentSales, *sale)
	sess.Unlock()

	s.logger.InfoContext(ctx, "sale completed",
		slog.String("session_id", sessionID),
		slog.Int64("sale_id", sale.ID),
		slog.String("sale_number", sale.SaleNumber),
		slog.String("total", sub.Summary.Total.StringFixed(domain.MoneyPlaces)),
	)

	s.refreshHistory(detached, sess, gen)
	s.publishCompleted(detached, sessionID, sale, sub)
	return sale, nil
}

// prepare checks the submission preconditions in order and builds the
// submission snapshot. The caller holds the session lock.
func (s *CheckoutService) prepare(sess *domain.Session) (domain.SaleSubmission, error) {
	if sess.Customer == nil {
		return domain.SaleSubmission{}, domain.ErrNoCustomerSelected
	}
	if !sess.HasBranch() {
		return domain.SaleSubmission{}, domain.ErrNoBranchSelected
	}
	if sess.Cart.IsEmpty() {
		return domain.SaleSubmission{}, domain.ErrEmptyCart
	}
	if missing := sess.Cart.MissingPrescriptions(); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, l := range missing {
			names = append(names, l.Product.Name)
		}
		return domain.SaleSubmission{}, domain.ErrMissingPrescription.WithMessage(
			"prescription required for: %s", strings.Join(names, ", "))
	}

	lines := sess.Cart.Lines()
	summary, err := s.calc.Summarize(lines, sess.Discount)
	if err != nil {
		return domain.SaleSubmission{}, err
	}

	sub := domain.NewSaleSubmission(
		sess.Customer.ID,
		sess.BranchID,
		lines,
		summary.Rounded(),
		sess.PaymentMethod,
		sess.CashierName,
	)
	sub.Notes = sess.Notes
	return sub, nil
}

func (s *CheckoutService) send(ctx context.Context, sessionID string, sub domain.SaleSubmission) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "checkout.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("pos.session_id", sessionID),
			attribute.Int64("pos.customer_id", sub.CustomerID),
			attribute.Int64("pos.branch_id", sub.BranchID),
			attribute.Int("pos.lines", len(sub.Lines)),
			attribute.String("pos.total", sub.Summary.Total.StringFixed(domain.MoneyPlaces)),
		),
	)
	defer span.End()

	sale, err := s.sales.CreateSale(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if sale == nil {
		err := apperrors.BadGateway("sales service returned no sale", nil)
		span.SetStatus(codes.Error, err.Message)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("pos.sale_id", sale.ID))
	return sale, nil
}

// refreshHistory reloads the first page of sales. Failures only cost a stale
// list, so they are logged and dropped.
func (s *CheckoutService) refreshHistory(ctx context.Context, sess *domain.Session, gen uint64) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	params := pagination.DefaultParams()
	params.PerPage = recentSalesSize

	sales, _, err := s.sales.ListSales(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh sale history",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Generation == gen {
		sess.RecentSales = sales
	}
}

func (s *CheckoutService) publishCompleted(ctx context.Context, sessionID string, sale *domain.Sale, sub domain.SaleSubmission) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSaleCompleted(ctx, sessionID, sale, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale completed event",
			slog.String("session_id", sessionID),
			slog.Int64("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CheckoutService) publishFailed(ctx context.Context, sessionID string, sub domain.SaleSubmission, cause error) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSaleFailed(ctx, sessionID, sub, cause); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale failed event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// SalesHistory returns a page of recorded sales.
func (s *CheckoutService) SalesHistory(ctx context.Context, params pagination.Params) (pagination.Result[domain.Sale], error) {
	sales, total, err := s.sales.ListSales(ctx, params)
	if err != nil {
		return pagination.Result[domain.Sale]{}, err
	}
	return pagination.NewResult(sales, total, params), nil
}

func prependSale(sales []domain.Sale, sale domain.Sale) []domain.Sale {
	out := make([]domain.Sale, 0, recentSalesSize)
	out = append(out, sale)
	for _, s := range sales {
		if len(out) == recentSalesSize {
			break
		}
		if s.ID != sale.ID {
			out = append(out, s)
		}
	}
	return out
}
