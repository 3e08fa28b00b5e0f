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

package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_ParseAndFormatRoundTrip(t *testing.T) {
	cases := []struct {
		currency string
		in       string
		minor    int64
		out      string
	}{
		{"EUR", "1499.90", 149990, "1499.90"},
		{"try", "0.05", 5, "0.05"},
		{"USD", "12", 1200, "12.00"},
		{"USD", "-3.10", -310, "-3.10"},
		{"JPY", "980", 980, "980"},
		{"KWD", "1.250", 1250, "1.250"},
		{"EUR", ".5", 50, "0.50"},
	}
	for _, c := range cases {
		a, err := Parse(c.currency, c.in)
		require.NoError(t, err, "parse %s %q", c.currency, c.in)
		assert.Equal(t, c.minor, a.Minor, "%s %q", c.currency, c.in)
		assert.Equal(t, c.out, a.String())
	}
}

func TestMoney_ParseRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1,50", "--4", "1e3"} {
		_, err := Parse("EUR", in)
		assert.ErrorIs(t, err, ErrMalformedAmount, "input %q", in)
	}

	// Sub-minor precision is data loss, not something to round silently.
	_, err := Parse("EUR", "1.999")
	assert.ErrorIs(t, err, ErrMalformedAmount)
	_, err = Parse("JPY", "10.5")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

func TestMoney_ParseRejectsUnknownCurrency(t *testing.T) {
	// Well-formed three-letter codes outside ISO 4217 must fail too,
	// or downstream currency validation silently accepts them.
	for _, code := range []string{"EURO", "XXX", "ZZZ", ""} {
		_, err := Parse(code, "1.00")
		assert.ErrorIs(t, err, ErrUnknownCurrency, "code %q", code)
		_, err = Exponent(code)
		assert.ErrorIs(t, err, ErrUnknownCurrency, "code %q", code)
	}
}

func TestMoney_AddAndSum(t *testing.T) {
	a, _ := New("EUR", 1000)
	b, _ := New("EUR", 250)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Minor)

	_, err = a.Add(Amount{Currency: "USD", Minor: 1})
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	total, err := Sum("EUR", []Amount{a, b, {Currency: "EUR", Minor: -500}})
	require.NoError(t, err)
	assert.Equal(t, int64(750), total.Minor)

	zero, err := Sum("TRY", nil)
	require.NoError(t, err)
	assert.Equal(t, Amount{Currency: "TRY", Minor: 0}, zero)
}

// TestPurpose: Validates exchange-rate conversion across currencies with
// different minor-unit exponents.
// Scope: Unit Test
// Expected: Results round half away from zero at the target's minor unit.
func TestMoney_Convert(t *testing.T) {
	eur, _ := New("EUR", 10000) // 100.00 EUR

	try, err := Convert(eur, "TRY", 35.5)
	require.NoError(t, err)
	assert.Equal(t, Amount{Currency: "TRY", Minor: 355000}, try)

	jpy, err := Convert(eur, "JPY", 157.345)
	require.NoError(t, err)
	assert.Equal(t, Amount{Currency: "JPY", Minor: 15735}, jpy) // 15734.5 rounds up

	kwd, err := Convert(eur, "KWD", 0.306)
	require.NoError(t, err)
	assert.Equal(t, Amount{Currency: "KWD", Minor: 30600}, kwd)

	_, err = Convert(eur, "TRY", 0)
	assert.ErrorIs(t, err, ErrBadRate)
	_, err = Convert(eur, "TRY", -1)
	assert.ErrorIs(t, err, ErrBadRate)
}

func TestMoney_ConvertRoundsHalfAwayFromZero(t *testing.T) {
	a, _ := New("EUR", 1) // 0.01 EUR
	got, err := Convert(a, "EUR", 0.5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Minor, "0.005 -> 0.01")

	neg, _ := New("EUR", -1)
	got, err = Convert(neg, "EUR", 0.5)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got.Minor, "-0.005 -> -0.01")
}
