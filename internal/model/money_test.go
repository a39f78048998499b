package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "100", want: "100"},
		{input: "99.9", want: "99.9"},
		{input: "0.01", want: "0.01"},
		{input: "9999999999.99", want: "9999999999.99"},
		{input: "1e400", wantErr: true},
		{input: "1e20000000", wantErr: true},
		{input: "1E2", wantErr: true},
		{input: "0.001", wantErr: true},
		{input: "10000000000", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "+5", wantErr: true},
		{input: ".5", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseMoney(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got))
		})
	}
}

func TestCheckMoney(t *testing.T) {
	testCases := []struct {
		name    string
		value   decimal.Decimal
		wantErr string
	}{
		{name: "zero", value: decimal.Zero},
		{name: "two_places", value: decimal.RequireFromString("10.55")},
		{name: "trailing_zeros", value: decimal.RequireFromString("10.500")},
		{name: "largest", value: decimal.RequireFromString("9999999999.99")},
		{name: "three_places", value: decimal.RequireFromString("10.555"), wantErr: "at most 2 decimal places"},
		{name: "tiny", value: decimal.New(1, -30), wantErr: "at most 2 decimal places"},
		{name: "overflow", value: decimal.New(1, 10), wantErr: "must be less than"},
		{name: "overflow_exponent", value: decimal.New(1, 11), wantErr: "must be less than"},
		{name: "negative_overflow", value: decimal.New(-1, 10), wantErr: "must be less than"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckMoney(tc.value)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCheckMoney_HugeExponentIsFast(t *testing.T) {
	start := time.Now()
	assert.Error(t, CheckMoney(decimal.New(1, 20000000)))
	assert.Error(t, CheckMoney(decimal.New(1, -20000000)))
	assert.Less(t, time.Since(start), time.Second)
}
