package core

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	// Price is a fixed-point oracle quote: Value scaled by 10^-Decimals usd per unit.
	Price struct {
		Value     int64     `json:"value"`
		Decimals  int32     `json:"decimals"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// PriceAdapter reads the latest quote for a single collateral asset.
	PriceAdapter interface {
		GetPrice(ctx context.Context) (*Price, error)
	}

	PriceAdapterMgr interface {
		GetPriceAdapter(asset *CollateralAsset) (PriceAdapter, error)
	}
)

// Normalized returns the quote as a decimal usd price per whole unit.
func (p *Price) Normalized() decimal.Decimal {
	return decimal.New(p.Value, -p.Decimals)
}

// Validate rejects non-positive quotes and, when maxAge is positive,
// quotes older than maxAge seconds at the given instant.
func (p *Price) Validate(now time.Time, maxAge int64) error {
	if p.Value <= 0 {
		return ErrInvalidOraclePrice
	}
	if maxAge > 0 && now.Sub(p.UpdatedAt) > time.Duration(maxAge)*time.Second {
		return ErrStalePrice
	}
	return nil
}

type OracleSetup uint8

const (
	OracleSetupNone OracleSetup = iota
	OracleSetupFixed
	OracleSetupMixin
)

func (o OracleSetup) String() string {
	switch o {
	case OracleSetupNone:
		return "None"
	case OracleSetupFixed:
		return "Fixed"
	case OracleSetupMixin:
		return "Mixin"
	default:
		return "Unknown"
	}
}

// StaticPriceAdapterMgr maps configured assets to their adapters by asset id.
type StaticPriceAdapterMgr struct {
	adapters map[string]PriceAdapter
}

// NewStaticPriceAdapterMgr pairs assets and adapters positionally.
// The two lists must have the same length.
func NewStaticPriceAdapterMgr(assets []*CollateralAsset, adapters []PriceAdapter) (*StaticPriceAdapterMgr, error) {
	if len(assets) != len(adapters) {
		return nil, ErrConfigurationMismatch
	}
	m := &StaticPriceAdapterMgr{
		adapters: make(map[string]PriceAdapter, len(assets)),
	}
	for i, asset := range assets {
		if adapters[i] == nil {
			return nil, errors.Wrapf(InvalidConfig, "nil price adapter for asset %s", asset.AssetId)
		}
		if _, ok := m.adapters[asset.AssetId]; ok {
			return nil, errors.Wrapf(InvalidConfig, "duplicate price adapter for asset %s", asset.AssetId)
		}
		m.adapters[asset.AssetId] = adapters[i]
	}
	return m, nil
}

func (m *StaticPriceAdapterMgr) GetPriceAdapter(asset *CollateralAsset) (PriceAdapter, error) {
	adapter, ok := m.adapters[asset.AssetId]
	if !ok {
		return nil, NoPriceAdapterFound
	}
	return adapter, nil
}

// FixedPriceAdapter serves a quote set by the operator, stamped from the
// injected clock. Suitable for pegged assets and for tests.
type FixedPriceAdapter struct {
	clk   clock.Clock
	price Price
}

func NewFixedPriceAdapter(clk clock.Clock, value int64, decimals int32) *FixedPriceAdapter {
	return &FixedPriceAdapter{
		clk: clk,
		price: Price{
			Value:     value,
			Decimals:  decimals,
			UpdatedAt: clk.Now(),
		},
	}
}

// SetPrice replaces the quote and refreshes its timestamp.
func (f *FixedPriceAdapter) SetPrice(value int64) {
	f.price.Value = value
	f.price.UpdatedAt = f.clk.Now()
}

func (f *FixedPriceAdapter) GetPrice(ctx context.Context) (*Price, error) {
	p := f.price
	return &p, nil
}

// MarketQuote is a spot quote as delivered by an external market data feed.
type MarketQuote struct {
	CoinId       string          `json:"coin_id"`
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewPriceFromQuote converts a market quote into a fixed-point price
// with the given number of decimals. Excess precision is truncated.
func NewPriceFromQuote(quote *MarketQuote, decimals int32) *Price {
	return &Price{
		Value:     quote.CurrentPrice.Shift(decimals).Truncate(0).IntPart(),
		Decimals:  decimals,
		UpdatedAt: quote.UpdatedAt,
	}
}

// MarketPriceAdapter serves the newest quote pushed by a market data
// feed. The feed goroutine calls UpdateQuote, the engine reads; a quote
// that stops refreshing ages out through the asset's OracleMaxAge.
type MarketPriceAdapter struct {
	mu       sync.RWMutex
	decimals int32
	quote    *MarketQuote
}

func NewMarketPriceAdapter(decimals int32) *MarketPriceAdapter {
	return &MarketPriceAdapter{decimals: decimals}
}

// UpdateQuote replaces the served quote.
func (m *MarketPriceAdapter) UpdateQuote(quote *MarketQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = quote
}

func (m *MarketPriceAdapter) GetPrice(ctx context.Context) (*Price, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.quote == nil {
		return nil, errors.Wrap(ErrInvalidOraclePrice, "no quote received")
	}
	return NewPriceFromQuote(m.quote, m.decimals), nil
}
