package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	SnapshotStore interface {
		InsertSnapshot(ctx context.Context, snapshot *Snapshot) error
		GetSnapshotById(ctx context.Context, snapshotId string) (*Snapshot, error)
		GetLatestSnapshot(ctx context.Context) (*Snapshot, error)
	}

	// Snapshot is one settled inbound transfer as reported by the wallet.
	Snapshot struct {
		SnapshotId string          `json:"snapshotId"`
		RequestId  string          `json:"requestId"`
		UserId     string          `json:"userId"`
		AssetId    string          `json:"assetId"`
		Amount     decimal.Decimal `json:"amount"`
		Memo       string          `json:"memo"`
		CreatedAt  int64           `json:"createdAt"`
	}
)
