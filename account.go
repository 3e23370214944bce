package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/fox-one/mixin-sdk-go/v2"
	"gorm.io/gorm"
)

type (
	AccountStore interface {
		GetAccount(ctx context.Context, accountId string) (*Account, error)
		CreateAccount(ctx context.Context, account *Account) error
		UpdateAccount(ctx context.Context, account *Account) error
	}

	// Account is one debtor identity. Collateral balances and the debt
	// position hang off it by account id.
	Account struct {
		Id        string       `json:"id"`
		Flags     AccountFlags `json:"flags"`
		CreatedAt int64        `json:"createdAt"`
		UpdatedAt int64        `json:"updatedAt"`
	}
)

type AccountFlags uint8

const (
	DisabledFlag AccountFlags = 1 << iota
)

func (a *Account) SetFlag(flag AccountFlags) {
	a.Flags |= flag
}

func (a *Account) UnsetFlag(flag AccountFlags) {
	a.Flags &^= flag
}

func (a *Account) GetFlag(flag AccountFlags) bool {
	return a.Flags&flag != 0
}

func (a *Account) Clone() *Account {
	return &Account{
		Id:        a.Id,
		Flags:     a.Flags,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func NewAccount(clk clock.Clock, accountId string) *Account {
	return &Account{
		Id:        accountId,
		CreatedAt: clk.Now().Unix(),
		UpdatedAt: clk.Now().Unix(),
	}
}

// NewAccountFromUser keys the account by the Mixin user id.
func NewAccountFromUser(clk clock.Clock, user *mixin.User) *Account {
	account := NewAccount(clk, user.UserID)
	if !user.CreatedAt.IsZero() {
		account.CreatedAt = user.CreatedAt.Unix()
	}
	return account
}

func FindOrCreateAccount(ctx context.Context, clk clock.Clock, store LedgerService, accountId string) (*Account, error) {
	account, err := store.GetAccount(ctx, accountId)
	if err == nil {
		return account, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	account = NewAccount(clk, accountId)
	if err := store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
