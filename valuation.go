package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CalcUsdValue prices an asset amount with a normalized usd price.
// The product is truncated to PRECISION digits, never rounded up.
func CalcUsdValue(amount, price decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, MathError
	}
	return amount.Mul(price).Truncate(PRECISION), nil
}

// CalcAmountFromUsd inverts CalcUsdValue: the asset amount whose value is
// at most usdValue at the given price. Division truncates at PRECISION
// digits so CalcUsdValue(CalcAmountFromUsd(v, p), p) never exceeds v.
func CalcAmountFromUsd(usdValue, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, errors.Wrap(MathError, "price is not positive")
	}
	if usdValue.IsNegative() {
		return decimal.Zero, MathError
	}
	amount, _ := usdValue.QuoRem(price, PRECISION)
	return amount, nil
}

// CalculateHealthFactor is the solvency ratio of an account: the
// liquidation-adjusted collateral value over the debt principal.
// Accounts without debt have no ratio and report MAX_HEALTH_FACTOR.
func CalculateHealthFactor(debt, collateralValue decimal.Decimal) decimal.Decimal {
	if !debt.IsPositive() {
		return MAX_HEALTH_FACTOR
	}
	adjusted := collateralValue.Mul(LIQUIDATION_THRESHOLD).Truncate(PRECISION)
	healthFactor, _ := adjusted.QuoRem(debt, PRECISION)
	return healthFactor
}

// CollateralWithPrice pairs a collateral balance with its asset config and
// a validated normalized price.
type CollateralWithPrice struct {
	Asset      *CollateralAsset
	Collateral *Collateral
	Price      decimal.Decimal
}

func (c *CollateralWithPrice) UsdValue() (decimal.Decimal, error) {
	return CalcUsdValue(c.Collateral.Amount, c.Price)
}

// ComputeTotalCollateralValue sums the usd values of the priced balances.
// Each term is truncated before summing.
func ComputeTotalCollateralValue(balances []*CollateralWithPrice) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, balance := range balances {
		value, err := balance.UsdValue()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// LoadCollateralsWithPrice loads the account's collateral balances in
// configured-asset order and pairs each with a validated price.
// Entries of changed replace the stored balance for their asset, so
// callers can evaluate pending mutations before committing them.
func LoadCollateralsWithPrice(ctx context.Context, clk clock.Clock, store LedgerService, assets []*CollateralAsset, mgr PriceAdapterMgr, accountId string, changed []*Collateral) ([]*CollateralWithPrice, error) {
	collaterals, err := store.ListCollaterals(ctx, accountId)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[string]*Collateral, len(collaterals))
	for _, collateral := range collaterals {
		byAsset[collateral.AssetId] = collateral
	}
	for _, collateral := range changed {
		if collateral.AccountId != accountId {
			return nil, errors.Wrapf(MathError, "changed balance belongs to account %s", collateral.AccountId)
		}
		byAsset[collateral.AssetId] = collateral
	}

	now := clk.Now()
	balances := make([]*CollateralWithPrice, 0, len(byAsset))
	for _, asset := range assets {
		collateral, ok := byAsset[asset.AssetId]
		if !ok {
			continue
		}

		adapter, err := mgr.GetPriceAdapter(asset)
		if err != nil {
			return nil, err
		}
		price, err := adapter.GetPrice(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "get price for asset %s", asset.AssetId)
		}
		if err := price.Validate(now, asset.OracleMaxAge); err != nil {
			return nil, errors.Wrapf(err, "asset %s", asset.AssetId)
		}

		balances = append(balances, &CollateralWithPrice{
			Asset:      asset,
			Collateral: collateral,
			Price:      price.Normalized(),
		})
	}
	return balances, nil
}
