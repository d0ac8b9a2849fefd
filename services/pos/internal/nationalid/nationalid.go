// Package nationalid validates Ecuadorian national identification numbers
// (cédula, "CI").
package nationalid

import (
	"sync"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/validator"
)

const (
	length      = 10
	maxProvince = 24
	maxCategory = 6
)

var coefficients = [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}

// IsValid reports whether id is a well-formed CI: ten ASCII digits, a
// province code in 1..24, a third digit no greater than 6 and a matching
// modulus-10 verifier digit.
func IsValid(id string) bool {
	if len(id) != length {
		return false
	}

	var d [length]int
	for i := 0; i < length; i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		d[i] = int(c - '0')
	}

	province := d[0]*10 + d[1]
	if province < 1 || province > maxProvince {
		return false
	}
	if d[2] > maxCategory {
		return false
	}

	sum := 0
	for i, k := range coefficients {
		p := d[i] * k
		if p >= 10 {
			p -= 9
		}
		sum += p
	}

	verifier := 0
	if r := sum % 10; r != 0 {
		verifier = 10 - r
	}
	return verifier == d[9]
}

// Tag is the validator tag request DTOs use for CI fields.
const Tag = "ec_ci"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidation makes the ec_ci tag available to pkg/validator. It is
// safe to call more than once.
func RegisterValidation() error {
	registerOnce.Do(func() {
		registerErr = validator.RegisterString(Tag, "must be a valid Ecuadorian identification number", IsValid)
	})
	return registerErr
}
