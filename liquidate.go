package core

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LiquidationBalances struct {
	TargetCollateral *Collateral   `json:"targetCollateral"`
	TargetDebt       *DebtPosition `json:"targetDebt"`
}

type LiquidateResult struct {
	PreBalances      *LiquidationBalances `json:"preBalances"`
	PostBalances     *LiquidationBalances `json:"postBalances"`
	TargetPreHealth  decimal.Decimal      `json:"targetPreHealth"`
	TargetPostHealth decimal.Decimal      `json:"targetPostHealth"`

	LiquidatorAccountId string           `json:"liquidatorAccountId"`
	TargetAccountId     string           `json:"targetAccountId"`
	Asset               *CollateralAsset `json:"asset"`

	DebtCovered  decimal.Decimal `json:"debtCovered"`
	SeizedAmount decimal.Decimal `json:"seizedAmount"`
	BonusAmount  decimal.Decimal `json:"bonusAmount"`
	TotalSeized  decimal.Decimal `json:"totalSeized"`
}

// Liquidate lets the liquidator cover part of an unhealthy target's debt
// in exchange for the target's collateral plus a bonus. The flow:
// 1. the target must be unhealthy
// 2. the seizure is sized from the covered debt at the oracle price,
//    plus the liquidation bonus
// 3. the seizure comes out of the named collateral alone
// 4. the covered debt burns from the liquidator's synthetic
// 5. the target's health factor must strictly improve
// 6. the liquidator must stay healthy
// Any failure leaves every position untouched.
func (e *Engine) Liquidate(ctx context.Context, liquidatorId, targetAccountId, assetId string, debtToCover decimal.Decimal) (*LiquidateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !debtToCover.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return nil, ErrZeroAmount
	}
	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetAccount(ctx, targetAccountId); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, AccountNotFound
		}
		return nil, err
	}

	targetDebt, err := e.findDebt(ctx, targetAccountId)
	if err != nil {
		return nil, err
	}
	targetCollateral, err := e.findCollateral(ctx, targetAccountId, asset)
	if err != nil {
		return nil, err
	}
	// no debt means nothing to cover, no balance means nothing to seize
	if targetDebt.IsEmpty() {
		return nil, HealthFactorOk
	}
	if targetCollateral.IsEmpty() {
		return nil, CollateralNotFound
	}

	preBalances, err := e.loadBalances(ctx, targetAccountId)
	if err != nil {
		return nil, err
	}
	preHealth, err := NewSolvencyEngine(preBalances, targetDebt).CheckPreLiquidationHealth()
	if err != nil {
		return nil, err
	}

	price, err := e.normalizedPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	seized, err := CalcAmountFromUsd(debtToCover, price)
	if err != nil {
		return nil, err
	}
	bonus := seized.Mul(LIQUIDATION_BONUS).Truncate(PRECISION)
	totalSeized := seized.Add(bonus)

	pre := &LiquidationBalances{
		TargetCollateral: targetCollateral.Clone(),
		TargetDebt:       targetDebt.Clone(),
	}

	ca := NewCollateralAccount(e.clk, targetCollateral.Clone(), asset)
	if err := ca.Withdraw(e.log, totalSeized); err != nil {
		return nil, err
	}
	da := NewDebtAccount(e.clk, targetDebt.Clone())
	if err := da.Burn(e.log, debtToCover); err != nil {
		return nil, err
	}

	postBalances, err := e.loadBalances(ctx, targetAccountId, ca.Collateral)
	if err != nil {
		return nil, err
	}
	postSolvency := NewSolvencyEngine(postBalances, da.Debt)
	postHealth, err := postSolvency.CheckPostLiquidationHealth(preHealth)
	if err != nil {
		return nil, err
	}

	// self-liquidation is judged on the mutated position
	if liquidatorId == targetAccountId {
		if err := postSolvency.AssertHealthy(); err != nil {
			return nil, err
		}
	} else {
		if _, err := e.loadAccount(ctx, liquidatorId); err != nil {
			return nil, err
		}
		liquidatorDebt, err := e.findDebt(ctx, liquidatorId)
		if err != nil {
			return nil, err
		}
		liquidatorBalances, err := e.loadBalances(ctx, liquidatorId)
		if err != nil {
			return nil, err
		}
		if err := NewSolvencyEngine(liquidatorBalances, liquidatorDebt).AssertHealthy(); err != nil {
			return nil, err
		}
	}

	if err := e.synth.Burn(ctx, liquidatorId, debtToCover); err != nil {
		return nil, err
	}
	if err := e.vault.TransferOut(ctx, liquidatorId, assetId, totalSeized); err != nil {
		return nil, err
	}

	if err := e.store.UpdateCollateral(ctx, ca.Collateral); err != nil {
		return nil, err
	}
	if err := e.store.UpdateDebt(ctx, da.Debt); err != nil {
		return nil, err
	}

	result := &LiquidateResult{
		PreBalances: pre,
		PostBalances: &LiquidationBalances{
			TargetCollateral: ca.Collateral.Clone(),
			TargetDebt:       da.Debt.Clone(),
		},
		TargetPreHealth:  preHealth,
		TargetPostHealth: postHealth,

		LiquidatorAccountId: liquidatorId,
		TargetAccountId:     targetAccountId,
		Asset:               asset,

		DebtCovered:  debtToCover,
		SeizedAmount: seized,
		BonusAmount:  bonus,
		TotalSeized:  totalSeized,
	}

	e.journal(ctx, liquidatorId, MATLiquidate,
		ActionDetail{
			AccountId:  liquidatorId,
			ActionType: MATBurn,
			AssetId:    e.synth.AssetId(),
			Amount:     debtToCover,
		},
		ActionDetail{
			AccountId:  targetAccountId,
			ActionType: MATRedeem,
			AssetId:    assetId,
			Amount:     totalSeized,
		})
	e.log.Info().
		Str("liquidator", liquidatorId).
		Str("target", targetAccountId).
		Str("asset", assetId).
		Msgf("liquidated %s debt for %s collateral", debtToCover, totalSeized)
	return result, nil
}
