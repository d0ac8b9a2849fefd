package client

import (
	"context"
	"net/url"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// PrescriptionClient reads and registers prescriptions.
type PrescriptionClient struct {
	base
}

// NewPrescriptionClient creates a prescription adapter rooted at the sales service.
func NewPrescriptionClient(doer HTTPDoer, baseURL string) *PrescriptionClient {
	return &PrescriptionClient{base: newBase(doer, baseURL, "sales", Bare)}
}

// ListByCustomer fetches every prescription of a customer.
func (c *PrescriptionClient) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Prescription, error) {
	q := url.Values{}
	q.Set("size", "100")

	page, err := getJSON[Page[prescriptionWire]](ctx, c.base, idPath("/api/prescriptions/customer/%s", customerID), q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Prescription, 0, len(page.Content))
	for _, w := range page.Content {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// Create registers a prescription with status ACTIVE.
func (c *PrescriptionClient) Create(ctx context.Context, in domain.NewPrescription) (*domain.Prescription, error) {
	req := prescriptionRequest{
		CustomerID:      in.CustomerID,
		DoctorName:      in.DoctorName,
		DoctorLicense:   in.DoctorLicense,
		DoctorSpecialty: in.DoctorSpecialty,
		IssueDate:       date{in.IssueDate},
		ExpirationDate:  date{in.ExpirationDate},
		Diagnosis:       in.Diagnosis,
		Notes:           in.Notes,
		Status:          domain.PrescriptionActive,
	}
	w, err := postJSON[prescriptionWire](ctx, c.base, "/api/prescriptions", req)
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, noPayload(c.service)
	}
	p := w.toDomain()
	return &p, nil
}
