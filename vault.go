package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// MixinVault settles engine transfers over one Mixin custody account.
// Inbound legs are already settled by the snapshot that triggered the
// operation, so they only acknowledge. Outbound legs become pending
// payouts for the wallet worker to submit.
type MixinVault struct {
	clk clock.Clock
	log Log

	synthAssetId string
	synthDust    decimal.Decimal
	assets       map[string]*CollateralAsset
	payouts      PayoutStore
}

func NewMixinVault(clk clock.Clock, log Log, synthAsset *mixin.SafeAsset, assets []*CollateralAsset, payouts PayoutStore) *MixinVault {
	assetMap := make(map[string]*CollateralAsset, len(assets))
	for _, asset := range assets {
		assetMap[asset.AssetId] = asset
	}
	return &MixinVault{
		clk:          clk,
		log:          log,
		synthAssetId: synthAsset.AssetID,
		synthDust:    synthAsset.Dust,
		assets:       assetMap,
		payouts:      payouts,
	}
}

func (v *MixinVault) AssetId() string {
	return v.synthAssetId
}

func (v *MixinVault) TransferIn(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error {
	v.log.Debug().Str("account", accountId).Str("asset", assetId).Msgf("custody received: %s", amount)
	return nil
}

func (v *MixinVault) TransferOut(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error {
	asset, ok := v.assets[assetId]
	if !ok {
		return ErrUnsupportedAsset
	}
	if amount.LessThan(asset.Dust) {
		return ErrAmountBelowDust
	}

	payout := NewPayout(v.clk, uuid.Must(uuid.NewV4()).String(), accountId, assetId, amount, "collateral")
	return v.payouts.CreatePayout(ctx, payout)
}

func (v *MixinVault) Mint(ctx context.Context, accountId string, amount decimal.Decimal) error {
	if amount.LessThan(v.synthDust) {
		return ErrAmountBelowDust
	}

	payout := NewPayout(v.clk, uuid.Must(uuid.NewV4()).String(), accountId, v.synthAssetId, amount, "mint")
	return v.payouts.CreatePayout(ctx, payout)
}

func (v *MixinVault) Burn(ctx context.Context, accountId string, amount decimal.Decimal) error {
	v.log.Debug().Str("account", accountId).Msgf("synthetic retired: %s", amount)
	return nil
}

func (v *MixinVault) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	if amount.LessThan(v.synthDust) {
		return ErrAmountBelowDust
	}

	payout := NewPayout(v.clk, uuid.Must(uuid.NewV4()).String(), to, v.synthAssetId, amount, "transfer")
	return v.payouts.CreatePayout(ctx, payout)
}
