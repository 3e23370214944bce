package core

import (
	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	// CollateralAccount wraps one collateral balance together with its
	// asset config for mutation. Callers mutate clones and commit them
	// only after the solvency checks pass.
	CollateralAccount struct {
		clk clock.Clock

		Collateral *Collateral      `json:"collateral"`
		Asset      *CollateralAsset `json:"asset"`
	}

	// DebtAccount wraps one debt position for mutation.
	DebtAccount struct {
		clk clock.Clock

		Debt *DebtPosition `json:"debt"`
	}
)

func NewCollateralAccount(clk clock.Clock, collateral *Collateral, asset *CollateralAsset) *CollateralAccount {
	return &CollateralAccount{
		clk:        clk,
		Collateral: collateral,
		Asset:      asset,
	}
}

func (ca *CollateralAccount) Deposit(log Log, amount decimal.Decimal) error {
	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	if ca.Collateral.AssetId != ca.Asset.AssetId {
		return IllegalBalanceState
	}

	log.Debug().Msgf("Collateral increase: %s %s", amount, ca.Asset.Symbol)

	if err := ca.Collateral.ChangeAmount(amount); err != nil {
		return err
	}
	ca.Collateral.LastUpdate = ca.clk.Now().Unix()
	return nil
}

func (ca *CollateralAccount) Withdraw(log Log, amount decimal.Decimal) error {
	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	if ca.Collateral.AssetId != ca.Asset.AssetId {
		return IllegalBalanceState
	}

	log.Debug().Msgf("Collateral decrease: %s %s", amount, ca.Asset.Symbol)

	if err := ca.Collateral.ChangeAmount(amount.Neg()); err != nil {
		return err
	}
	ca.Collateral.LastUpdate = ca.clk.Now().Unix()
	return nil
}

func NewDebtAccount(clk clock.Clock, debt *DebtPosition) *DebtAccount {
	return &DebtAccount{
		clk:  clk,
		Debt: debt,
	}
}

func (da *DebtAccount) Mint(log Log, amount decimal.Decimal) error {
	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}

	log.Debug().Msgf("Debt increase: %s", amount)

	if err := da.Debt.ChangePrincipal(amount); err != nil {
		return err
	}
	da.Debt.LastUpdate = da.clk.Now().Unix()
	return nil
}

func (da *DebtAccount) Burn(log Log, amount decimal.Decimal) error {
	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}

	log.Debug().Msgf("Debt decrease: %s", amount)

	if err := da.Debt.ChangePrincipal(amount.Neg()); err != nil {
		return err
	}
	da.Debt.LastUpdate = da.clk.Now().Unix()
	return nil
}
