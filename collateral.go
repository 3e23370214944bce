package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	CollateralStore interface {
		FindCollateral(ctx context.Context, accountId, assetId string) (*Collateral, error)
		ListCollaterals(ctx context.Context, accountId string) ([]*Collateral, error)
		CreateCollateral(ctx context.Context, collateral *Collateral) error
		UpdateCollateral(ctx context.Context, collateral *Collateral) error
	}

	// Collateral is one account's balance of one configured asset,
	// denominated in whole units of the asset.
	Collateral struct {
		AccountId  string          `json:"accountId"`
		AssetId    string          `json:"assetId"`
		Amount     decimal.Decimal `json:"amount"`
		LastUpdate int64           `json:"lastUpdate"`
	}
)

func NewCollateral(clk clock.Clock, accountId, assetId string) *Collateral {
	return &Collateral{
		AccountId:  accountId,
		AssetId:    assetId,
		Amount:     decimal.Zero,
		LastUpdate: clk.Now().Unix(),
	}
}

func (c *Collateral) Clone() *Collateral {
	return &Collateral{
		AccountId:  c.AccountId,
		AssetId:    c.AssetId,
		Amount:     c.Amount,
		LastUpdate: c.LastUpdate,
	}
}

// ChangeAmount applies a signed delta. The balance can never go negative.
func (c *Collateral) ChangeAmount(delta decimal.Decimal) error {
	amount := c.Amount.Add(delta)
	if amount.IsNegative() {
		return ErrInsufficientBalance
	}
	c.Amount = amount
	return nil
}

func (c *Collateral) IsEmpty() bool {
	return c.Amount.LessThan(EMPTY_BALANCE_THRESHOLD)
}

func FindOrCreateCollateral(ctx context.Context, clk clock.Clock, store LedgerService, account *Account, asset *CollateralAsset) (*Collateral, error) {
	collateral, err := store.FindCollateral(ctx, account.Id, asset.AssetId)
	if err == nil {
		return collateral, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	collateral = NewCollateral(clk, account.Id, asset.AssetId)
	if err := store.CreateCollateral(ctx, collateral); err != nil {
		return nil, err
	}
	return collateral, nil
}
