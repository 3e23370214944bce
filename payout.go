package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	PayoutStore interface {
		CreatePayout(ctx context.Context, payout *Payout) error
		UpdatePayoutStatus(ctx context.Context, requestId string, status PayoutStatus, updatedAt int64) error
		GetPayoutByRequestId(ctx context.Context, requestId string) (*Payout, error)
		ListPayoutsByStatus(ctx context.Context, status PayoutStatus, limit int64) ([]*Payout, error)
	}

	// Payout is a pending outbound transfer. The engine only records the
	// intent; a wallet worker picks pending payouts up and submits them.
	Payout struct {
		RequestId string          `json:"requestId"`
		Receiver  string          `json:"receiver"`
		AssetId   string          `json:"assetId"`
		Amount    decimal.Decimal `json:"amount"`
		Memo      string          `json:"memo"`
		Status    PayoutStatus    `json:"status"`
		CreatedAt int64           `json:"createdAt"`
		UpdatedAt int64           `json:"updatedAt"`
	}
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusConfirmed PayoutStatus = "confirmed"
	PayoutStatusFailed    PayoutStatus = "failed"
)

func (p PayoutStatus) String() string {
	switch p {
	case PayoutStatusPending:
		return "pending"
	case PayoutStatusConfirmed:
		return "confirmed"
	case PayoutStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func NewPayout(clk clock.Clock, requestId, receiver, assetId string, amount decimal.Decimal, memo string) *Payout {
	return &Payout{
		RequestId: requestId,
		Receiver:  receiver,
		AssetId:   assetId,
		Amount:    amount,
		Memo:      memo,
		Status:    PayoutStatusPending,
		CreatedAt: clk.Now().Unix(),
		UpdatedAt: clk.Now().Unix(),
	}
}

func (p *Payout) UpdateStatus(clk clock.Clock, status PayoutStatus) {
	p.Status = status
	p.UpdatedAt = clk.Now().Unix()
}
