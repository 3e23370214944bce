package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// PRECISION is the fixed-point scale shared by normalized prices,
// collateral amounts and usd values.
const PRECISION int32 = 18

var (
	ONE = decimal.NewFromInt(1)

	ZERO_AMOUNT_THRESHOLD   = decimal.Zero
	EMPTY_BALANCE_THRESHOLD = decimal.NewFromFloat(0.00000001)

	MIN_HEALTH_FACTOR = decimal.NewFromInt(1)
	// MAX_HEALTH_FACTOR is reported for accounts without outstanding debt.
	MAX_HEALTH_FACTOR = decimal.NewFromUint64(math.MaxUint64)

	// LIQUIDATION_THRESHOLD is the share of collateral value counted toward solvency.
	LIQUIDATION_THRESHOLD = decimal.NewFromFloat(0.5)
	LIQUIDATION_BONUS     = decimal.NewFromFloat(0.1)
)
