package core

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrUnsupportedAsset      = errors.New("asset is not configured as collateral")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrConfigurationMismatch = errors.New("asset and price adapter lists differ in length")
	ErrInvalidOraclePrice    = errors.New("oracle price is not positive")
	ErrStalePrice            = errors.New("oracle price is stale")
	ErrAmountBelowDust       = errors.New("amount is below the asset dust")
	ErrInvalidMemo           = errors.New("invalid memo")

	HealthFactorOk          = errors.New("account health factor is not below the minimum")
	HealthFactorNotImproved = errors.New("liquidation did not improve the health factor")
	AccountDisabled         = errors.New("account is disabled")
	AccountNotFound         = errors.New("account not found")
	CollateralNotFound      = errors.New("collateral balance not found")
	NoPriceAdapterFound     = errors.New("no price adapter found for asset")
	IllegalBalanceState     = errors.New("balance does not match the asset")
	InvalidConfig           = errors.New("invalid config")
	MathError               = errors.New("math error")
)

// HealthFactorBrokenError reports the health factor that failed the
// minimum check so callers can surface it.
type HealthFactorBrokenError struct {
	HealthFactor decimal.Decimal
}

func (e *HealthFactorBrokenError) Error() string {
	return fmt.Sprintf("health factor %s is below the minimum %s", e.HealthFactor, MIN_HEALTH_FACTOR)
}

// NewHealthFactorBrokenError snapshots the offending health factor.
func NewHealthFactorBrokenError(healthFactor decimal.Decimal) *HealthFactorBrokenError {
	return &HealthFactorBrokenError{HealthFactor: healthFactor}
}
