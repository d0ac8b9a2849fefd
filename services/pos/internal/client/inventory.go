package client

import (
	"context"
	"errors"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// InventoryClient reads branch stock from the inventory service.
type InventoryClient struct {
	base
}

// NewInventoryClient creates an inventory adapter rooted at baseURL.
func NewInventoryClient(doer HTTPDoer, baseURL string) *InventoryClient {
	return &InventoryClient{base: newBase(doer, baseURL, "inventory", Enveloped)}
}

// GetStock fetches the stock of productID at branchID. A branch with no stock
// record for the product reports zero units.
func (c *InventoryClient) GetStock(ctx context.Context, branchID, productID int64) (*domain.StockSnapshot, error) {
	w, err := getJSON[stockWire](ctx, c.base, idPath("/api/stock/%s/%s", branchID, productID), nil)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &domain.StockSnapshot{BranchID: branchID, ProductID: productID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.StockSnapshot{
		BranchID:     branchID,
		ProductID:    productID,
		Quantity:     w.Quantity,
		MinimumStock: w.MinimumStock,
	}, nil
}

// ListBranches fetches every branch.
func (c *InventoryClient) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	ws, err := getJSON[[]branchWire](ctx, c.base, "/api/branches", nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Branch, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}
