package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/validator"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/nationalid"
)

// CustomerService selects and registers customers and their prescriptions.
type CustomerService struct {
	customers     CustomerGateway
	prescriptions PrescriptionGateway
	logger        *slog.Logger
	now           func() time.Time
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customers CustomerGateway, prescriptions PrescriptionGateway, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		customers:     customers,
		prescriptions: prescriptions,
		logger:        logger,
		now:           time.Now,
	}
}

// SelectCustomer makes customerID the buyer of the session and loads the
// customer's usable prescriptions. Both are fetched concurrently. A failure
// to load prescriptions leaves the list empty instead of failing the
// selection. Switching to another customer detaches every prescription
// reference from the cart.
func (s *CustomerService) SelectCustomer(ctx context.Context, sess *domain.Session, customerID int64) (*domain.Customer, error) {
	if customerID <= 0 {
		return nil, apperrors.InvalidInput("customer id must be positive")
	}

	sess.Lock()
	if err := sess.CheckMutable(); err != nil {
		sess.Unlock()
		return nil, err
	}
	gen := sess.Generation
	sess.Unlock()

	var (
		customer      *domain.Customer
		prescriptions []domain.Prescription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.Get(gctx, customerID)
		if err != nil {
			return err
		}
		customer = c
		return nil
	})
	g.Go(func() error {
		ps, err := s.prescriptions.ListByCustomer(gctx, customerID)
		if err != nil {
			// Cancelled because the customer lookup already failed.
			if gctx.Err() != nil {
				return nil
			}
			s.logger.WarnContext(ctx, "failed to load prescriptions",
				slog.Int64("customer_id", customerID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		prescriptions = ps
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NotFound("customer", strconv.FormatInt(customerID, 10))
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Generation != gen {
		return nil, domain.ErrSessionReset
	}
	if err := sess.CheckMutable(); err != nil {
		return nil, err
	}

	if sess.CustomerID() != customer.ID {
		sess.Cart.DetachPrescriptions()
	}
	sess.Customer = customer
	sess.Prescriptions = domain.UsablePrescriptions(prescriptions, s.now())

	s.logger.InfoContext(ctx, "customer selected",
		slog.String("session_id", sess.ID),
		slog.Int64("customer_id", customer.ID),
		slog.Int("usable_prescriptions", len(sess.Prescriptions)),
	)
	return customer, nil
}

// ClearCustomer unselects the customer and detaches prescriptions.
func (s *CustomerService) ClearCustomer(_ context.Context, sess *domain.Session) error {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.CheckMutable(); err != nil {
		return err
	}
	sess.Customer = nil
	sess.Prescriptions = nil
	sess.Cart.DetachPrescriptions()
	return nil
}

// ListPrescriptions returns the usable prescriptions of the selected customer.
func (s *CustomerService) ListPrescriptions(_ context.Context, sess *domain.Session) ([]domain.Prescription, error) {
	sess.Lock()
	defer sess.Unlock()

	if sess.Customer == nil {
		return nil, domain.ErrNoCustomerSelected
	}
	return append([]domain.Prescription{}, sess.Prescriptions...), nil
}

// CreatePrescription registers a prescription for the selected customer and
// adds it to the session's usable list. When attachTo is positive the new
// prescription is attached to that product's cart line.
func (s *CustomerService) CreatePrescription(ctx context.Context, sess *domain.Session, in domain.NewPrescription, attachTo int64) (*domain.Prescription, error) {
	if !in.ExpirationDate.After(in.IssueDate) {
		return nil, apperrors.InvalidInput("expiration date must be after issue date")
	}

	sess.Lock()
	if err := sess.CheckMutable(); err != nil {
		sess.Unlock()
		return nil, err
	}
	if sess.Customer == nil {
		sess.Unlock()
		return nil, domain.ErrNoCustomerSelected
	}
	if attachTo > 0 {
		if _, ok := sess.Cart.Find(attachTo); !ok {
			sess.Unlock()
			return nil, domain.ErrLineNotFound
		}
	}
	in.CustomerID = sess.Customer.ID
	gen := sess.Generation
	sess.Unlock()

	p, err := s.prescriptions.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prescription created",
		slog.Int64("prescription_id", p.ID),
		slog.Int64("customer_id", in.CustomerID),
	)

	sess.Lock()
	defer sess.Unlock()

	if sess.Generation != gen || sess.CustomerID() != in.CustomerID {
		return p, domain.ErrSessionReset
	}
	if p.Usable(s.now()) {
		sess.Prescriptions = append(sess.Prescriptions, *p)
	}
	if attachTo > 0 {
		if err := sess.CheckMutable(); err != nil {
			return p, err
		}
		if _, err := sess.UsablePrescription(p.ID, s.now()); err != nil {
			return p, err
		}
		if err := sess.Cart.AttachPrescription(attachTo, p.ID); err != nil {
			return p, err
		}
	}
	return p, nil
}

type customerInput struct {
	IdentificationNumber string `json:"identification_number" validate:"required,ec_ci"`
	FirstName            string `json:"first_name" validate:"required,max=100"`
	LastName             string `json:"last_name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"omitempty,numeric,min=9,max=10"`
}

// CreateCustomer registers a customer. The identification number is checked
// locally before the sales service is called.
func (s *CustomerService) CreateCustomer(ctx context.Context, in domain.NewCustomer) (*domain.Customer, error) {
	if err := nationalid.RegisterValidation(); err != nil {
		return nil, apperrors.Internal(err)
	}

	in.IdentificationNumber = strings.TrimSpace(in.IdentificationNumber)
	if in.IdentificationType == "" {
		in.IdentificationType = domain.IdentificationCedula
	}

	if err := validator.Validate(customerInput{
		IdentificationNumber: in.IdentificationNumber,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		Phone:                in.Phone,
	}); err != nil {
		return nil, err
	}

	c, err := s.customers.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer created", slog.Int64("customer_id", c.ID))
	return c, nil
}

// SearchCustomer finds a customer by identification number. It returns nil
// without error when nobody matches.
func (s *CustomerService) SearchCustomer(ctx context.Context, identification string) (*domain.Customer, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, apperrors.InvalidInput("identification is required")
	}
	return s.customers.SearchByIdentification(ctx, identification)
}
