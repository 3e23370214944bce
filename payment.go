package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	PaymentStore interface {
		CreatePayment(ctx context.Context, payment *Payment) error
		UpsertPayment(ctx context.Context, payment *Payment) error
		UpdatePaymentStatus(ctx context.Context, requestId string, status PaymentStatus, message string, updatedAt int64) error
		GetPaymentByRequestId(ctx context.Context, requestId string) (*Payment, error)
	}

	// Payment records the outcome of one settled snapshot. The request id
	// is derived from the snapshot id, so replays land on the same row.
	Payment struct {
		RequestId  string        `json:"requestId"`
		SnapshotId string        `json:"snapshotId"`
		Uid        string        `json:"uid"`
		Status     PaymentStatus `json:"status"`
		Message    string        `json:"message"`

		AssetId string          `json:"assetId"`
		Action  MemoActionType  `json:"action"`
		Amount  decimal.Decimal `json:"amount"`

		Extra     PaymentExtra `json:"extra,omitempty"`
		CreatedAt int64        `json:"createdAt"`
		UpdatedAt int64        `json:"updatedAt"`
	}

	PaymentExtra struct {
		MetaMap         *MetaMap         `json:"metaMap,omitempty"`
		LiquidateResult *LiquidateResult `json:"liquidateResult,omitempty"`
	}

	MetaMap struct {
		BurnAll   bool `json:"burn_all,omitempty"`
		RedeemAll bool `json:"redeem_all,omitempty"`
	}
)

type PmtOptFunc func(p *Payment)

func WithMetaMap(meta *MetaMap) PmtOptFunc {
	return func(p *Payment) {
		p.Extra.MetaMap = meta
	}
}

func NewPayment(clk clock.Clock,
	requestId string,
	snapshotId string,
	uid string,
	action MemoActionType,
	assetId string,
	amount decimal.Decimal,
	opts ...PmtOptFunc,
) *Payment {
	payment := &Payment{
		RequestId:  requestId,
		SnapshotId: snapshotId,
		Uid:        uid,
		Status:     PaymentStatusPending,
		AssetId:    assetId,
		Action:     action,
		Amount:     amount,

		CreatedAt: clk.Now().Unix(),
		UpdatedAt: clk.Now().Unix(),
	}
	for _, opt := range opts {
		opt(payment)
	}
	return payment
}

func (j PaymentExtra) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *PaymentExtra) Scan(value any) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (p PaymentStatus) String() string {
	switch p {
	case PaymentStatusPending:
		return "pending"
	case PaymentStatusConfirmed:
		return "confirmed"
	case PaymentStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p *Payment) UpdateStatus(clk clock.Clock, status PaymentStatus, message string) {
	p.Status = status
	p.Message = message
	p.UpdatedAt = clk.Now().Unix()
}
