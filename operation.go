package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	OperationStore interface {
		CreateOperation(ctx context.Context, operation *Operation) error
		ListOperations(ctx context.Context, accountId string, op MemoActionType, createdBeforeAt, limit int64) ([]Operation, error)
	}

	// Operation is one journal row per committed engine operation.
	Operation struct {
		Id        string          `json:"id"`
		AccountId string          `json:"accountId"`
		Op        MemoActionType  `json:"op"`
		Extra     OperationDetail `json:"extra"`
		CreatedAt int64           `json:"createdAt"`
	}

	OperationDetail struct {
		Type      MemoActionType `json:"type"`
		AccountId string         `json:"actor"`
		Actions   []ActionDetail `json:"actions"`
	}

	ActionDetail struct {
		AccountId  string          `json:"actor"`
		ActionType MemoActionType  `json:"actionType"`
		AssetId    string          `json:"assetId"`
		Amount     decimal.Decimal `json:"amount"`
	}
)

func NewOperation(clk clock.Clock, id string, accountId string, typ MemoActionType, extra OperationDetail) Operation {
	return Operation{
		Id:        id,
		AccountId: accountId,
		Op:        typ,
		Extra:     extra,
		CreatedAt: clk.Now().Unix(),
	}
}

func (j OperationDetail) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *OperationDetail) Scan(value any) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}
