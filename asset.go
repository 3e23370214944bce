package core

import (
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CollateralAsset is the immutable configuration of one accepted
// collateral asset. The set of configured assets is fixed at engine
// construction.
type CollateralAsset struct {
	AssetId   string          `json:"assetId"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Precision int32           `json:"precision"`
	Dust      decimal.Decimal `json:"dust"`

	OracleSetup OracleSetup `json:"oracleSetup"`
	// OracleMaxAge is the max quote age in seconds. Zero or negative disables
	// the staleness check.
	OracleMaxAge int64 `json:"oracleMaxAge"`
}

func (a *CollateralAsset) Validate() error {
	if a.AssetId == "" {
		return errors.Wrap(InvalidConfig, "asset id is empty")
	}
	if a.Precision < 0 || a.Precision > PRECISION {
		return errors.Wrapf(InvalidConfig, "asset %s precision out of range", a.AssetId)
	}
	if a.Dust.IsNegative() {
		return errors.Wrapf(InvalidConfig, "asset %s dust is negative", a.AssetId)
	}
	return nil
}

func (a *CollateralAsset) Clone() *CollateralAsset {
	return &CollateralAsset{
		AssetId:      a.AssetId,
		Symbol:       a.Symbol,
		Name:         a.Name,
		Precision:    a.Precision,
		Dust:         a.Dust,
		OracleSetup:  a.OracleSetup,
		OracleMaxAge: a.OracleMaxAge,
	}
}

// NewCollateralAssetFromSafeAsset builds the collateral config for a Mixin
// safe asset.
func NewCollateralAssetFromSafeAsset(asset *mixin.SafeAsset, setup OracleSetup, oracleMaxAge int64) *CollateralAsset {
	return &CollateralAsset{
		AssetId:      asset.AssetID,
		Symbol:       asset.Symbol,
		Name:         asset.Name,
		Precision:    asset.Precision,
		Dust:         asset.Dust,
		OracleSetup:  setup,
		OracleMaxAge: oracleMaxAge,
	}
}
