package core

import (
	"context"
	"testing"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollateralChangeAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		delta    decimal.Decimal
		expected decimal.Decimal
		wantErr  bool
	}{
		{
			name:     "increase",
			amount:   decimal.NewFromInt(10),
			delta:    decimal.NewFromInt(5),
			expected: decimal.NewFromInt(15),
		},
		{
			name:     "decrease",
			amount:   decimal.NewFromInt(10),
			delta:    decimal.NewFromInt(-4),
			expected: decimal.NewFromInt(6),
		},
		{
			name:     "decrease to zero",
			amount:   decimal.NewFromInt(10),
			delta:    decimal.NewFromInt(-10),
			expected: decimal.Zero,
		},
		{
			name:    "overdraw",
			amount:  decimal.NewFromInt(10),
			delta:   decimal.RequireFromString("-10.000000000000000001"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collateral{AccountId: "alice", AssetId: "weth", Amount: tt.amount}
			err := c.ChangeAmount(tt.delta)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInsufficientBalance)
				assert.True(t, c.Amount.Equal(tt.amount), "expected %s, got %s", tt.amount, c.Amount)
				return
			}
			assert.NoError(t, err)
			assert.True(t, c.Amount.Equal(tt.expected), "expected %s, got %s", tt.expected, c.Amount)
		})
	}
}

func TestCollateralIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		expected bool
	}{
		{name: "zero", amount: decimal.Zero, expected: true},
		{name: "below threshold", amount: decimal.RequireFromString("0.000000009"), expected: true},
		{name: "at threshold", amount: decimal.RequireFromString("0.00000001"), expected: false},
		{name: "funded", amount: decimal.NewFromInt(1), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collateral{Amount: tt.amount}
			assert.Equal(t, tt.expected, c.IsEmpty())
		})
	}
}

func TestCollateralClone(t *testing.T) {
	c := &Collateral{AccountId: "alice", AssetId: "weth", Amount: decimal.NewFromInt(10), LastUpdate: 100}
	clone := c.Clone()

	assert.NoError(t, clone.ChangeAmount(decimal.NewFromInt(5)))
	assert.True(t, c.Amount.Equal(decimal.NewFromInt(10)), "expected 10, got %s", c.Amount)
	assert.True(t, clone.Amount.Equal(decimal.NewFromInt(15)), "expected 15, got %s", clone.Amount)
}

func TestFindOrCreateCollateral(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := NewMemoryStore()

	account := NewAccount(clk, "alice")
	asset := testAsset("weth", "WETH", 0)

	collateral, err := FindOrCreateCollateral(ctx, clk, store.LedgerService(), account, asset)
	require.NoError(t, err)
	assert.True(t, collateral.Amount.IsZero(), "expected 0, got %s", collateral.Amount)

	// the zero row is persisted
	found, err := store.FindCollateral(ctx, "alice", "weth")
	require.NoError(t, err)
	assert.Equal(t, "weth", found.AssetId)

	found.Amount = decimal.NewFromInt(3)
	require.NoError(t, store.UpdateCollateral(ctx, found))

	again, err := FindOrCreateCollateral(ctx, clk, store.LedgerService(), account, asset)
	require.NoError(t, err)
	assert.True(t, again.Amount.Equal(decimal.NewFromInt(3)), "expected 3, got %s", again.Amount)
}
