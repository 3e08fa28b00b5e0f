// Copyright 2026 The TourDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package money handles amounts as integer minor units (cents, kuruş)
// paired with an ISO 4217 currency code. Floats never touch stored
// amounts; they appear only at the exchange-rate boundary, where the
// result is rounded half away from zero at minor-unit precision.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownCurrency  = errors.New("unknown currency code")
	ErrMalformedAmount  = errors.New("malformed decimal amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrBadRate          = errors.New("exchange rate must be positive")
)

// exponents lists the minor-unit digits for every currency code the CRM
// accepts. Codes outside this table are rejected; ISO 4217 keeps "XXX"
// and the test codes reserved for non-currencies.
var exponents = map[string]int{
	"JPY": 0, "KRW": 0, "ISK": 0, "VND": 0, "CLP": 0,
	"BHD": 3, "KWD": 3, "OMR": 3, "TND": 3, "JOD": 3,
	"AED": 2, "ARS": 2, "AUD": 2, "AZN": 2, "BGN": 2, "BRL": 2,
	"CAD": 2, "CHF": 2, "CNY": 2, "COP": 2, "CZK": 2, "DKK": 2,
	"EGP": 2, "EUR": 2, "GBP": 2, "GEL": 2, "HKD": 2, "HUF": 2,
	"IDR": 2, "ILS": 2, "INR": 2, "MAD": 2, "MXN": 2, "MYR": 2,
	"NOK": 2, "NZD": 2, "PEN": 2, "PKR": 2, "PLN": 2, "QAR": 2,
	"RON": 2, "RSD": 2, "RUB": 2, "SAR": 2, "SEK": 2, "SGD": 2,
	"THB": 2, "TRY": 2, "UAH": 2, "USD": 2, "ZAR": 2,
}

// Amount is a monetary value in minor units of Currency.
type Amount struct {
	Currency string `json:"currency"`
	Minor    int64  `json:"amount_minor"`
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) (int, error) {
	c := strings.ToUpper(strings.TrimSpace(currency))
	exp, ok := exponents[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	return exp, nil
}

// New returns an Amount after normalizing the currency code.
func New(currency string, minor int64) (Amount, error) {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if _, err := Exponent(c); err != nil {
		return Amount{}, err
	}
	return Amount{Currency: c, Minor: minor}, nil
}

// Parse converts a decimal string like "1499.90" into minor units,
// rejecting more fractional digits than the currency carries.
func Parse(currency, s string) (Amount, error) {
	exp, err := Exponent(currency)
	if err != nil {
		return Amount{}, err
	}

	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return Amount{}, ErrMalformedAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > exp {
		return Amount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrMalformedAmount, s, exp)
	}
	for len(frac) < exp {
		frac += "0"
	}

	var minor int64
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return Amount{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
			}
			d := int64(r - '0')
			if minor > (math.MaxInt64-d)/10 {
				return Amount{}, fmt.Errorf("%w: %q overflows", ErrMalformedAmount, s)
			}
			minor = minor*10 + d
		}
	}
	if neg {
		minor = -minor
	}

	return New(currency, minor)
}

// String formats the amount as a decimal with the currency's exponent,
// e.g. {TRY 149990} -> "1499.90".
func (a Amount) String() string {
	exp, err := Exponent(a.Currency)
	if err != nil {
		exp = 2
	}
	minor := a.Minor
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	if exp == 0 {
		return fmt.Sprintf("%s%d", sign, minor)
	}
	pow := int64(1)
	for i := 0; i < exp; i++ {
		pow *= 10
	}
	return fmt.Sprintf("%s%d.%0*d", sign, minor/pow, exp, minor%pow)
}

// Add returns a+b, failing on mixed currencies.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Currency: a.Currency, Minor: a.Minor + b.Minor}, nil
}

// Sum folds amounts in a single currency. An empty slice sums to zero in
// the given currency.
func Sum(currency string, amounts []Amount) (Amount, error) {
	total, err := New(currency, 0)
	if err != nil {
		return Amount{}, err
	}
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// Convert applies an exchange rate (units of target per unit of source)
// and rounds half away from zero at the target currency's minor unit.
func Convert(a Amount, target string, rate float64) (Amount, error) {
	if rate <= 0 {
		return Amount{}, ErrBadRate
	}
	srcExp, err := Exponent(a.Currency)
	if err != nil {
		return Amount{}, err
	}
	dstExp, err := Exponent(target)
	if err != nil {
		return Amount{}, err
	}

	// Scale between minor-unit magnitudes before applying the rate.
	major := float64(a.Minor) / math.Pow10(srcExp)
	minor := math.Round(major * rate * math.Pow10(dstExp))
	return New(target, int64(minor))
}
