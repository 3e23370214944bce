package core

import (
	"context"
	"sync"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	// SyntheticAsset is the external token the engine issues against
	// collateral. Mint and burn authority rests with the engine alone.
	SyntheticAsset interface {
		AssetId() string
		Mint(ctx context.Context, accountId string, amount decimal.Decimal) error
		Burn(ctx context.Context, accountId string, amount decimal.Decimal) error
		Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
	}

	// CollateralVault moves collateral between user custody and engine
	// custody.
	CollateralVault interface {
		TransferIn(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error
		TransferOut(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error
	}

	// LedgerService bundles the persistent stores the engine operates on.
	LedgerService struct {
		AccountStore
		CollateralStore
		DebtStore
	}

	// Engine is the issuance core. All operations are serialized behind
	// one mutex: positions mutate on clones, pass the solvency checks,
	// and only then reach the collaborators and the stores.
	Engine struct {
		mu  sync.Mutex
		clk clock.Clock
		log Log

		assets   []*CollateralAsset
		assetMap map[string]*CollateralAsset
		priceMgr PriceAdapterMgr

		synth SyntheticAsset
		vault CollateralVault

		store      LedgerService
		operations OperationStore
	}

	AccountInformation struct {
		TotalDebt            decimal.Decimal `json:"totalDebt"`
		TotalCollateralValue decimal.Decimal `json:"totalCollateralValue"`
	}
)

type OptionFunc func(e *Engine)

func WithClock(clk clock.Clock) OptionFunc {
	return func(e *Engine) {
		e.clk = clk
	}
}

func WithLog(log Log) OptionFunc {
	return func(e *Engine) {
		e.log = log
	}
}

func WithOperationStore(operations OperationStore) OptionFunc {
	return func(e *Engine) {
		e.operations = operations
	}
}

// NewEngine pairs the configured assets with their price adapters
// positionally. The two lists must have the same length.
func NewEngine(assets []*CollateralAsset, adapters []PriceAdapter, synth SyntheticAsset, vault CollateralVault, store LedgerService, opts ...OptionFunc) (*Engine, error) {
	if len(assets) != len(adapters) {
		return nil, ErrConfigurationMismatch
	}

	assetMap := make(map[string]*CollateralAsset, len(assets))
	for _, asset := range assets {
		if err := asset.Validate(); err != nil {
			return nil, err
		}
		if _, ok := assetMap[asset.AssetId]; ok {
			return nil, errors.Wrapf(InvalidConfig, "duplicate asset %s", asset.AssetId)
		}
		assetMap[asset.AssetId] = asset
	}

	priceMgr, err := NewStaticPriceAdapterMgr(assets, adapters)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clk:      clock.New(),
		log:      NopLog(),
		assets:   assets,
		assetMap: assetMap,
		priceMgr: priceMgr,
		synth:    synth,
		vault:    vault,
		store:    store,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) SyntheticAssetId() string {
	return e.synth.AssetId()
}

// ConfiguredAssets returns the collateral configs in construction order.
func (e *Engine) ConfiguredAssets() []*CollateralAsset {
	assets := make([]*CollateralAsset, len(e.assets))
	copy(assets, e.assets)
	return assets
}

func (e *Engine) configuredAsset(assetId string) (*CollateralAsset, error) {
	asset, ok := e.assetMap[assetId]
	if !ok {
		return nil, ErrUnsupportedAsset
	}
	return asset, nil
}

func (e *Engine) loadAccount(ctx context.Context, accountId string) (*Account, error) {
	account, err := FindOrCreateAccount(ctx, e.clk, e.store, accountId)
	if err != nil {
		return nil, err
	}
	if account.GetFlag(DisabledFlag) {
		return nil, AccountDisabled
	}
	return account, nil
}

// findDebt reads the debt position without creating a row. Accounts
// that never minted carry a transient zero position.
func (e *Engine) findDebt(ctx context.Context, accountId string) (*DebtPosition, error) {
	debt, err := e.store.FindDebt(ctx, accountId)
	if err == gorm.ErrRecordNotFound {
		return NewDebtPosition(e.clk, accountId), nil
	}
	return debt, err
}

// findCollateral reads a collateral balance without creating a row.
func (e *Engine) findCollateral(ctx context.Context, accountId string, asset *CollateralAsset) (*Collateral, error) {
	collateral, err := e.store.FindCollateral(ctx, accountId, asset.AssetId)
	if err == gorm.ErrRecordNotFound {
		return NewCollateral(e.clk, accountId, asset.AssetId), nil
	}
	return collateral, err
}

func (e *Engine) normalizedPrice(ctx context.Context, asset *CollateralAsset) (decimal.Decimal, error) {
	adapter, err := e.priceMgr.GetPriceAdapter(asset)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := adapter.GetPrice(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "get price for asset %s", asset.AssetId)
	}
	if err := price.Validate(e.clk.Now(), asset.OracleMaxAge); err != nil {
		return decimal.Zero, errors.Wrapf(err, "asset %s", asset.AssetId)
	}
	return price.Normalized(), nil
}

func (e *Engine) loadBalances(ctx context.Context, accountId string, changed ...*Collateral) ([]*CollateralWithPrice, error) {
	return LoadCollateralsWithPrice(ctx, e.clk, e.store, e.assets, e.priceMgr, accountId, changed)
}

// journal records the committed operation. Journal failures do not fail
// the operation itself.
func (e *Engine) journal(ctx context.Context, accountId string, typ MemoActionType, actions ...ActionDetail) {
	if e.operations == nil {
		return
	}
	operation := NewOperation(e.clk, uuid.Must(uuid.NewV4()).String(), accountId, typ, OperationDetail{
		Type:      typ,
		AccountId: accountId,
		Actions:   actions,
	})
	if err := e.operations.CreateOperation(ctx, &operation); err != nil {
		e.log.Warn().Msgf("operation journal write failed: %v", err)
	}
}

// DepositCollateral credits the account with custody-settled collateral.
// Deposits never lower the health factor, so no solvency check runs.
func (e *Engine) DepositCollateral(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return err
	}
	account, err := e.loadAccount(ctx, accountId)
	if err != nil {
		return err
	}

	collateral, err := FindOrCreateCollateral(ctx, e.clk, e.store, account, asset)
	if err != nil {
		return err
	}

	ca := NewCollateralAccount(e.clk, collateral.Clone(), asset)
	if err := ca.Deposit(e.log, amount); err != nil {
		return err
	}

	if err := e.vault.TransferIn(ctx, accountId, assetId, amount); err != nil {
		return err
	}
	if err := e.store.UpdateCollateral(ctx, ca.Collateral); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATDeposit, ActionDetail{
		AccountId:  accountId,
		ActionType: MATDeposit,
		AssetId:    assetId,
		Amount:     amount,
	})
	e.log.Info().Str("account", accountId).Str("asset", assetId).Msgf("collateral deposited: %s", amount)
	return nil
}

// MintSynthetic issues synthetic against the account's collateral. The
// grown debt must leave the account healthy.
func (e *Engine) MintSynthetic(ctx context.Context, accountId string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	account, err := e.loadAccount(ctx, accountId)
	if err != nil {
		return err
	}

	debt, err := FindOrCreateDebt(ctx, e.clk, e.store, account)
	if err != nil {
		return err
	}

	da := NewDebtAccount(e.clk, debt.Clone())
	if err := da.Mint(e.log, amount); err != nil {
		return err
	}

	balances, err := e.loadBalances(ctx, accountId)
	if err != nil {
		return err
	}
	if err := NewSolvencyEngine(balances, da.Debt).AssertHealthy(); err != nil {
		return err
	}

	if err := e.synth.Mint(ctx, accountId, amount); err != nil {
		return err
	}
	if err := e.store.UpdateDebt(ctx, da.Debt); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATMint, ActionDetail{
		AccountId:  accountId,
		ActionType: MATMint,
		AssetId:    e.synth.AssetId(),
		Amount:     amount,
	})
	e.log.Info().Str("account", accountId).Msgf("synthetic minted: %s", amount)
	return nil
}

// RedeemCollateral releases collateral back to the account. The shrunk
// balance must leave the account healthy.
func (e *Engine) RedeemCollateral(ctx context.Context, accountId, assetId string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return err
	}
	if _, err := e.loadAccount(ctx, accountId); err != nil {
		return err
	}

	collateral, err := e.findCollateral(ctx, accountId, asset)
	if err != nil {
		return err
	}

	ca := NewCollateralAccount(e.clk, collateral.Clone(), asset)
	if err := ca.Withdraw(e.log, amount); err != nil {
		return err
	}

	debt, err := e.findDebt(ctx, accountId)
	if err != nil {
		return err
	}

	balances, err := e.loadBalances(ctx, accountId, ca.Collateral)
	if err != nil {
		return err
	}
	if err := NewSolvencyEngine(balances, debt).AssertHealthy(); err != nil {
		return err
	}

	if err := e.vault.TransferOut(ctx, accountId, assetId, amount); err != nil {
		return err
	}
	if err := e.store.UpdateCollateral(ctx, ca.Collateral); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATRedeem, ActionDetail{
		AccountId:  accountId,
		ActionType: MATRedeem,
		AssetId:    assetId,
		Amount:     amount,
	})
	e.log.Info().Str("account", accountId).Str("asset", assetId).Msgf("collateral redeemed: %s", amount)
	return nil
}

// BurnSynthetic settles debt with synthetic supplied by the account.
// Shrinking debt can only improve health, so no solvency check runs and
// an underwater account can always repay.
func (e *Engine) BurnSynthetic(ctx context.Context, accountId string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !amount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	if _, err := e.loadAccount(ctx, accountId); err != nil {
		return err
	}

	debt, err := e.findDebt(ctx, accountId)
	if err != nil {
		return err
	}

	da := NewDebtAccount(e.clk, debt.Clone())
	if err := da.Burn(e.log, amount); err != nil {
		return err
	}

	if err := e.synth.Burn(ctx, accountId, amount); err != nil {
		return err
	}
	if err := e.store.UpdateDebt(ctx, da.Debt); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATBurn, ActionDetail{
		AccountId:  accountId,
		ActionType: MATBurn,
		AssetId:    e.synth.AssetId(),
		Amount:     amount,
	})
	e.log.Info().Str("account", accountId).Msgf("synthetic burned: %s", amount)
	return nil
}

// DepositAndMint performs deposit and mint as one atomic operation: the
// solvency check sees both pending mutations, and either both commit or
// neither does.
func (e *Engine) DepositAndMint(ctx context.Context, accountId, assetId string, collateralAmount, mintAmount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !collateralAmount.GreaterThan(ZERO_AMOUNT_THRESHOLD) || !mintAmount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return err
	}
	account, err := e.loadAccount(ctx, accountId)
	if err != nil {
		return err
	}

	collateral, err := FindOrCreateCollateral(ctx, e.clk, e.store, account, asset)
	if err != nil {
		return err
	}
	debt, err := FindOrCreateDebt(ctx, e.clk, e.store, account)
	if err != nil {
		return err
	}

	ca := NewCollateralAccount(e.clk, collateral.Clone(), asset)
	if err := ca.Deposit(e.log, collateralAmount); err != nil {
		return err
	}
	da := NewDebtAccount(e.clk, debt.Clone())
	if err := da.Mint(e.log, mintAmount); err != nil {
		return err
	}

	balances, err := e.loadBalances(ctx, accountId, ca.Collateral)
	if err != nil {
		return err
	}
	if err := NewSolvencyEngine(balances, da.Debt).AssertHealthy(); err != nil {
		return err
	}

	if err := e.vault.TransferIn(ctx, accountId, assetId, collateralAmount); err != nil {
		return err
	}
	if err := e.synth.Mint(ctx, accountId, mintAmount); err != nil {
		return err
	}
	if err := e.store.UpdateCollateral(ctx, ca.Collateral); err != nil {
		return err
	}
	if err := e.store.UpdateDebt(ctx, da.Debt); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATDepositMint,
		ActionDetail{
			AccountId:  accountId,
			ActionType: MATDeposit,
			AssetId:    assetId,
			Amount:     collateralAmount,
		},
		ActionDetail{
			AccountId:  accountId,
			ActionType: MATMint,
			AssetId:    e.synth.AssetId(),
			Amount:     mintAmount,
		})
	e.log.Info().Str("account", accountId).Str("asset", assetId).Msgf("deposited %s and minted %s", collateralAmount, mintAmount)
	return nil
}

// RedeemForSynthetic burns debt and releases collateral as one atomic
// operation. The burn applies before the redeem so the freed debt
// capacity counts in the solvency check.
func (e *Engine) RedeemForSynthetic(ctx context.Context, accountId, assetId string, collateralAmount, burnAmount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !collateralAmount.GreaterThan(ZERO_AMOUNT_THRESHOLD) || !burnAmount.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return err
	}
	if _, err := e.loadAccount(ctx, accountId); err != nil {
		return err
	}

	debt, err := e.findDebt(ctx, accountId)
	if err != nil {
		return err
	}
	da := NewDebtAccount(e.clk, debt.Clone())
	if err := da.Burn(e.log, burnAmount); err != nil {
		return err
	}

	collateral, err := e.findCollateral(ctx, accountId, asset)
	if err != nil {
		return err
	}
	ca := NewCollateralAccount(e.clk, collateral.Clone(), asset)
	if err := ca.Withdraw(e.log, collateralAmount); err != nil {
		return err
	}

	balances, err := e.loadBalances(ctx, accountId, ca.Collateral)
	if err != nil {
		return err
	}
	if err := NewSolvencyEngine(balances, da.Debt).AssertHealthy(); err != nil {
		return err
	}

	if err := e.synth.Burn(ctx, accountId, burnAmount); err != nil {
		return err
	}
	if err := e.vault.TransferOut(ctx, accountId, assetId, collateralAmount); err != nil {
		return err
	}
	if err := e.store.UpdateDebt(ctx, da.Debt); err != nil {
		return err
	}
	if err := e.store.UpdateCollateral(ctx, ca.Collateral); err != nil {
		return err
	}

	e.journal(ctx, accountId, MATRedeemBurn,
		ActionDetail{
			AccountId:  accountId,
			ActionType: MATBurn,
			AssetId:    e.synth.AssetId(),
			Amount:     burnAmount,
		},
		ActionDetail{
			AccountId:  accountId,
			ActionType: MATRedeem,
			AssetId:    assetId,
			Amount:     collateralAmount,
		})
	e.log.Info().Str("account", accountId).Str("asset", assetId).Msgf("burned %s and redeemed %s", burnAmount, collateralAmount)
	return nil
}

// GetAccountInformation reports the outstanding debt and the total usd
// value of the account's collateral.
func (e *Engine) GetAccountInformation(ctx context.Context, accountId string) (*AccountInformation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	balances, err := e.loadBalances(ctx, accountId)
	if err != nil {
		return nil, err
	}
	totalValue, err := ComputeTotalCollateralValue(balances)
	if err != nil {
		return nil, err
	}
	debt, err := e.findDebt(ctx, accountId)
	if err != nil {
		return nil, err
	}

	return &AccountInformation{
		TotalDebt:            debt.Principal,
		TotalCollateralValue: totalValue,
	}, nil
}

func (e *Engine) GetAccountCollateralValue(ctx context.Context, accountId string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	balances, err := e.loadBalances(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	return ComputeTotalCollateralValue(balances)
}

func (e *Engine) GetUsdValue(ctx context.Context, assetId string, amount decimal.Decimal) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := e.normalizedPrice(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcUsdValue(amount, price)
}

func (e *Engine) GetTokenAmountFromUsd(ctx context.Context, assetId string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := e.normalizedPrice(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcAmountFromUsd(usdValue, price)
}

func (e *Engine) GetHealthFactor(ctx context.Context, accountId string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	balances, err := e.loadBalances(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	debt, err := e.findDebt(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	return NewSolvencyEngine(balances, debt).HealthFactor()
}

func (e *Engine) GetCollateralBalance(ctx context.Context, accountId, assetId string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	asset, err := e.configuredAsset(assetId)
	if err != nil {
		return decimal.Zero, err
	}
	collateral, err := e.findCollateral(ctx, accountId, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return collateral.Amount, nil
}
