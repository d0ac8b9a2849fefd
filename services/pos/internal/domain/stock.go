package domain

import "github.com/shopspring/decimal"

// StockSnapshot is the availability of a product at a branch when it was
// fetched. It is advisory and never cached.
type StockSnapshot struct {
	BranchID     int64 `json:"branch_id"`
	ProductID    int64 `json:"product_id"`
	Quantity     int   `json:"quantity"`
	MinimumStock int   `json:"minimum_stock,omitempty"`
}

// Dashboard aggregates the reporting service's headline metrics.
type Dashboard struct {
	Sales     SalesMetrics     `json:"sales_metrics"`
	Inventory InventoryMetrics `json:"inventory_metrics"`
}

// SalesMetrics summarizes sales activity.
type SalesMetrics struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalSales      int64           `json:"total_sales"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	UniqueCustomers int64           `json:"unique_customers"`
}

// InventoryMetrics summarizes stock levels.
type InventoryMetrics struct {
	TotalProducts       int64           `json:"total_products"`
	LowStockProducts    int64           `json:"low_stock_products"`
	ExpiringSoon        int64           `json:"expiring_soon"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
}
