package domain

import (
	"strings"
	"time"
)

// Default identification type for customers registered at the counter.
const IdentificationCedula = "CEDULA"

// Customer is a registered buyer.
type Customer struct {
	ID                   int64  `json:"id"`
	IdentificationNumber string `json:"identification_number"`
	IdentificationType   string `json:"identification_type,omitempty"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address,omitempty"`
	City                 string `json:"city,omitempty"`
	Active               bool   `json:"active"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NewCustomer is the data needed to register a customer.
type NewCustomer struct {
	IdentificationNumber string
	IdentificationType   string
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	Address              string
	City                 string
	BirthDate            *time.Time
}

// Prescription statuses.
const (
	PrescriptionActive    = "ACTIVE"
	PrescriptionUsed      = "USED"
	PrescriptionExpired   = "EXPIRED"
	PrescriptionCancelled = "CANCELLED"
)

// Prescription is a doctor's prescription registered for a customer.
type Prescription struct {
	ID                 int64     `json:"id"`
	PrescriptionNumber string    `json:"prescription_number,omitempty"`
	CustomerID         int64     `json:"customer_id"`
	DoctorName         string    `json:"doctor_name"`
	DoctorLicense      string    `json:"doctor_license,omitempty"`
	DoctorSpecialty    string    `json:"doctor_specialty,omitempty"`
	IssueDate          time.Time `json:"issue_date"`
	ExpirationDate     time.Time `json:"expiration_date"`
	Diagnosis          string    `json:"diagnosis,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
}

// Usable reports whether the prescription can back a sale at now.
func (p Prescription) Usable(now time.Time) bool {
	return p.Status == PrescriptionActive && p.ExpirationDate.After(now)
}

// UsablePrescriptions filters ps down to the ones usable at now.
func UsablePrescriptions(ps []Prescription, now time.Time) []Prescription {
	out := make([]Prescription, 0, len(ps))
	for _, p := range ps {
		if p.Usable(now) {
			out = append(out, p)
		}
	}
	return out
}

// NewPrescription is the data needed to register a prescription.
type NewPrescription struct {
	CustomerID      int64
	DoctorName      string
	DoctorLicense   string
	DoctorSpecialty string
	IssueDate       time.Time
	ExpirationDate  time.Time
	Diagnosis       string
	Notes           string
}
