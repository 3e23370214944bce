package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	DebtStore interface {
		FindDebt(ctx context.Context, accountId string) (*DebtPosition, error)
		CreateDebt(ctx context.Context, debt *DebtPosition) error
		UpdateDebt(ctx context.Context, debt *DebtPosition) error
	}

	// DebtPosition is the synthetic amount an account has minted and not
	// yet burned. One position per account.
	DebtPosition struct {
		AccountId  string          `json:"accountId"`
		Principal  decimal.Decimal `json:"principal"`
		LastUpdate int64           `json:"lastUpdate"`
	}
)

func NewDebtPosition(clk clock.Clock, accountId string) *DebtPosition {
	return &DebtPosition{
		AccountId:  accountId,
		Principal:  decimal.Zero,
		LastUpdate: clk.Now().Unix(),
	}
}

func (d *DebtPosition) Clone() *DebtPosition {
	return &DebtPosition{
		AccountId:  d.AccountId,
		Principal:  d.Principal,
		LastUpdate: d.LastUpdate,
	}
}

// ChangePrincipal applies a signed delta. The principal can never go negative.
func (d *DebtPosition) ChangePrincipal(delta decimal.Decimal) error {
	principal := d.Principal.Add(delta)
	if principal.IsNegative() {
		return ErrInsufficientBalance
	}
	d.Principal = principal
	return nil
}

func (d *DebtPosition) IsEmpty() bool {
	return d.Principal.LessThan(EMPTY_BALANCE_THRESHOLD)
}

func FindOrCreateDebt(ctx context.Context, clk clock.Clock, store LedgerService, account *Account) (*DebtPosition, error) {
	debt, err := store.FindDebt(ctx, account.Id)
	if err == nil {
		return debt, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	debt = NewDebtPosition(clk, account.Id)
	if err := store.CreateDebt(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}
