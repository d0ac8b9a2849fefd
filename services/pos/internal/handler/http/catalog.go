package http

import (
	"log/slog"
	"net/http"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httputil"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// CatalogHandler serves the product picker and the branch selector.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// SearchProducts handles GET /api/v1/products?q=
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	httputil.WriteData(w, http.StatusOK, views)
}

// ListBranches handles GET /api/v1/branches
func (h *CatalogHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	views := make([]branchView, 0, len(branches))
	for _, b := range branches {
		views = append(views, branchView(b))
	}
	httputil.WriteData(w, http.StatusOK, views)
}
