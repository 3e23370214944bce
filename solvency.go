package core

import (
	"github.com/shopspring/decimal"
)

// SolvencyEngine evaluates the health of one account from its priced
// collateral balances and its debt position. The caller decides whether
// the inputs are the committed state or pending clones.
type SolvencyEngine struct {
	balances []*CollateralWithPrice
	debt     *DebtPosition
}

func NewSolvencyEngine(balances []*CollateralWithPrice, debt *DebtPosition) *SolvencyEngine {
	return &SolvencyEngine{
		balances: balances,
		debt:     debt,
	}
}

// GetAccountHealthComponents returns the total collateral value and the
// outstanding debt the health factor is derived from.
func (s *SolvencyEngine) GetAccountHealthComponents() (decimal.Decimal, decimal.Decimal, error) {
	totalValue, err := ComputeTotalCollateralValue(s.balances)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return totalValue, s.debt.Principal, nil
}

func (s *SolvencyEngine) HealthFactor() (decimal.Decimal, error) {
	totalValue, totalDebt, err := s.GetAccountHealthComponents()
	if err != nil {
		return decimal.Zero, err
	}
	return CalculateHealthFactor(totalDebt, totalValue), nil
}

// AssertHealthy fails with HealthFactorBrokenError when the health factor
// is below the minimum.
func (s *SolvencyEngine) AssertHealthy() error {
	healthFactor, err := s.HealthFactor()
	if err != nil {
		return err
	}
	if healthFactor.LessThan(MIN_HEALTH_FACTOR) {
		return NewHealthFactorBrokenError(healthFactor)
	}
	return nil
}

// AssertUnhealthy is the counterpart of AssertHealthy: it fails with
// HealthFactorOk when the account is at or above the minimum.
func (s *SolvencyEngine) AssertUnhealthy() error {
	_, err := s.CheckPreLiquidationHealth()
	return err
}

// CheckPreLiquidationHealth gates liquidation eligibility: the account
// must already be unhealthy. Returns the health factor for the
// post-liquidation comparison.
func (s *SolvencyEngine) CheckPreLiquidationHealth() (decimal.Decimal, error) {
	healthFactor, err := s.HealthFactor()
	if err != nil {
		return decimal.Zero, err
	}
	if healthFactor.GreaterThanOrEqual(MIN_HEALTH_FACTOR) {
		return decimal.Zero, HealthFactorOk
	}
	return healthFactor, nil
}

// CheckPostLiquidationHealth verifies:
// 1. the health factor after the liquidation was applied is strictly
//    greater than preHealthFactor
// 2. otherwise the liquidation is rejected with HealthFactorNotImproved
func (s *SolvencyEngine) CheckPostLiquidationHealth(preHealthFactor decimal.Decimal) (decimal.Decimal, error) {
	healthFactor, err := s.HealthFactor()
	if err != nil {
		return decimal.Zero, err
	}
	if healthFactor.LessThanOrEqual(preHealthFactor) {
		return decimal.Zero, HealthFactorNotImproved
	}
	return healthFactor, nil
}
