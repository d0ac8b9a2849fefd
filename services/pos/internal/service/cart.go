package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// CartService mutates the cart of a session, checking stock and prescription
// rules along the way.
type CartService struct {
	catalog CatalogGateway
	stock   StockGateway
	logger  *slog.Logger
	now     func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(catalog CatalogGateway, stock StockGateway, logger *slog.Logger) *CartService {
	return &CartService{
		catalog: catalog,
		stock:   stock,
		logger:  logger,
		now:     time.Now,
	}
}

// AddProduct adds one unit of productID to the session's cart. A branch and a
// customer must be selected first. Availability is checked against the
// branch's current stock; the session lock is not held while the catalog and
// inventory services are called.
func (s *CartService) AddProduct(ctx context.Context, sess *domain.Session, productID int64) (domain.CartLine, error) {
	sess.Lock()
	if err := sess.CheckMutable(); err != nil {
		sess.Unlock()
		return domain.CartLine{}, err
	}
	if !sess.HasBranch() {
		sess.Unlock()
		return domain.CartLine{}, domain.ErrNoBranchSelected
	}
	if sess.Customer == nil {
		sess.Unlock()
		return domain.CartLine{}, domain.ErrNoCustomerSelected
	}
	branchID := sess.BranchID
	gen := sess.Generation
	sess.Unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !product.Active() {
		return domain.CartLine{}, domain.ErrProductInactive.WithMessage("%s is not available for sale", product.Name)
	}

	stock, err := s.stock.GetStock(ctx, branchID, productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if stock.Quantity <= 0 {
		return domain.CartLine{}, domain.ErrOutOfStock.WithMessage("%s is out of stock at this branch", product.Name)
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Generation != gen || sess.BranchID != branchID {
		return domain.CartLine{}, domain.ErrSessionReset
	}
	if err := sess.CheckMutable(); err != nil {
		return domain.CartLine{}, err
	}
	if sess.Customer == nil {
		return domain.CartLine{}, domain.ErrNoCustomerSelected
	}

	if sess.Cart.QuantityOf(productID)+1 > stock.Quantity {
		return domain.CartLine{}, domain.ErrInsufficientStock.WithMessage(
			"only %d units of %s available", stock.Quantity, product.Name)
	}

	line := sess.Cart.Increment(*product)
	CartMutations.WithLabelValues("add").Inc()

	s.logger.DebugContext(ctx, "product added to cart",
		slog.String("session_id", sess.ID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", line.Quantity),
		slog.Bool("pending_prescription", line.PendingPrescription()),
	)
	return line, nil
}

// AttachPrescription links a prescription to the line for productID. Only
// the selected customer's usable prescriptions, as loaded by SelectCustomer
// or CreatePrescription, may be attached.
func (s *CartService) AttachPrescription(ctx context.Context, sess *domain.Session, productID, prescriptionID int64) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	if _, ok := sess.Cart.Find(productID); !ok {
		return domain.ErrLineNotFound
	}
	if _, err := sess.UsablePrescription(prescriptionID, s.now()); err != nil {
		return err
	}
	if err := sess.Cart.AttachPrescription(productID, prescriptionID); err != nil {
		return err
	}
	CartMutations.WithLabelValues("attach_prescription").Inc()

	s.logger.DebugContext(ctx, "prescription attached",
		slog.String("session_id", sess.ID),
		slog.Int64("product_id", productID),
		slog.Int64("prescription_id", prescriptionID),
	)
	return nil
}

// UpdateQuantity replaces the quantity of a line without re-checking stock.
// A quantity of zero or less removes the line.
func (s *CartService) UpdateQuantity(_ context.Context, sess *domain.Session, productID int64, quantity int) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	if quantity > 0 {
		if _, ok := sess.Cart.Find(productID); !ok {
			return domain.ErrLineNotFound
		}
	}
	sess.Cart.SetQuantity(productID, quantity)
	CartMutations.WithLabelValues("update").Inc()
	return nil
}

// RemoveProduct drops the line for productID. Removing an absent product is
// not an error.
func (s *CartService) RemoveProduct(_ context.Context, sess *domain.Session, productID int64) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	sess.Cart.Remove(productID)
	CartMutations.WithLabelValues("remove").Inc()
	return nil
}
