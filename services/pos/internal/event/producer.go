package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/kafka"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/logger"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// Kafka topics for checkout outcomes.
var (
	TopicSaleCompleted = kafka.Topic("sale", "completed")
	TopicSaleFailed    = kafka.Topic("sale", "failed")
)

// Aggregate type constant.
const AggregateTypeSale = "sale"

// Source identifier for events originating from the POS service.
const SourcePOSService = "pos-service"

// SaleLineData is the line payload within sale events.
type SaleLineData struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	Subtotal       string `json:"subtotal"`
	PrescriptionID *int64 `json:"prescription_id,omitempty"`
}

// SaleCompletedData is the payload for a sale.completed event.
type SaleCompletedData struct {
	SaleID        int64          `json:"sale_id"`
	SaleNumber    string         `json:"sale_number"`
	SessionID     string         `json:"session_id"`
	CustomerID    int64          `json:"customer_id"`
	BranchID      int64          `json:"branch_id"`
	CashierName   string         `json:"cashier_name"`
	PaymentMethod string         `json:"payment_method"`
	Subtotal      string         `json:"subtotal"`
	Tax           string         `json:"tax"`
	Discount      string         `json:"discount"`
	Total         string         `json:"total"`
	Lines         []SaleLineData `json:"lines"`
}

// SaleFailedData is the payload for a sale.failed event.
type SaleFailedData struct {
	SessionID   string         `json:"session_id"`
	CustomerID  int64          `json:"customer_id"`
	BranchID    int64          `json:"branch_id"`
	CashierName string         `json:"cashier_name"`
	Total       string         `json:"total"`
	Reason      string         `json:"reason"`
	Lines       []SaleLineData `json:"lines"`
}

// Producer publishes sale events. It implements service.EventPublisher.
type Producer struct {
	publisher kafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the POS service.
func NewProducer(publisher kafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishSaleCompleted publishes a sale.completed event keyed by the sale ID.
func (p *Producer) PublishSaleCompleted(ctx context.Context, sessionID string, sale *domain.Sale, sub domain.SaleSubmission) error {
	data := SaleCompletedData{
		SaleID:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		SessionID:     sessionID,
		CustomerID:    sub.CustomerID,
		BranchID:      sub.BranchID,
		CashierName:   sub.CashierName,
		PaymentMethod: string(sub.PaymentMethod),
		Subtotal:      sub.Summary.Subtotal.StringFixed(domain.MoneyPlaces),
		Tax:           sub.Summary.TaxAmount.StringFixed(domain.MoneyPlaces),
		Discount:      sub.Summary.Discount.StringFixed(domain.MoneyPlaces),
		Total:         sub.Summary.Total.StringFixed(domain.MoneyPlaces),
		Lines:         lineData(sub.Lines),
	}

	return p.publish(ctx, TopicSaleCompleted, strconv.FormatInt(sale.ID, 10), sessionID, sub.CashierName, data)
}

// PublishSaleFailed publishes a sale.failed event keyed by the session ID.
func (p *Producer) PublishSaleFailed(ctx context.Context, sessionID string, sub domain.SaleSubmission, cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	data := SaleFailedData{
		SessionID:   sessionID,
		CustomerID:  sub.CustomerID,
		BranchID:    sub.BranchID,
		CashierName: sub.CashierName,
		Total:       sub.Summary.Total.StringFixed(domain.MoneyPlaces),
		Reason:      reason,
		Lines:       lineData(sub.Lines),
	}

	return p.publish(ctx, TopicSaleFailed, sessionID, sessionID, sub.CashierName, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, sessionID, cashier string, data any) error {
	event, err := kafka.NewEvent(topic, aggregateID, AggregateTypeSale, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("session_id", sessionID).
		WithMetadata("cashier", cashier)

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published sale event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func lineData(lines []domain.SaleLine) []SaleLineData {
	out := make([]SaleLineData, len(lines))
	for i, l := range lines {
		out[i] = SaleLineData{
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice.StringFixed(domain.MoneyPlaces),
			Subtotal:       l.Subtotal.StringFixed(domain.MoneyPlaces),
			PrescriptionID: l.PrescriptionID,
		}
	}
	return out
}
