package core

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type MemoActionType uint8

const (
	MATDeposit MemoActionType = iota + 1
	MATMint
	MATRedeem
	MATBurn
	MATDepositMint
	MATRedeemBurn
	MATLiquidate
)

func (m MemoActionType) String() string {
	switch m {
	case MATDeposit:
		return "Deposit"
	case MATMint:
		return "Mint"
	case MATRedeem:
		return "Redeem"
	case MATBurn:
		return "Burn"
	case MATDepositMint:
		return "Deposit And Mint"
	case MATRedeemBurn:
		return "Redeem For Synthetic"
	case MATLiquidate:
		return "Liquidate"
	default:
		return "Unknown"
	}
}

func ValidActionTypeString(action string) (MemoActionType, bool) {
	switch action {
	case MATDeposit.String():
		return MATDeposit, true
	case MATMint.String():
		return MATMint, true
	case MATRedeem.String():
		return MATRedeem, true
	case MATBurn.String():
		return MATBurn, true
	case MATDepositMint.String():
		return MATDepositMint, true
	case MATRedeemBurn.String():
		return MATRedeemBurn, true
	case MATLiquidate.String():
		return MATLiquidate, true
	default:
		return 0, false
	}
}

func (m MemoActionType) Valid() bool {
	switch m {
	case MATDeposit,
		MATMint,
		MATRedeem,
		MATBurn,
		MATDepositMint,
		MATRedeemBurn,
		MATLiquidate:
		return true
	default:
		return false
	}
}

type MemoAction struct {
	ActionType MemoActionType `json:"t"`
}

func (m MemoAction) Valid() bool {
	return m.ActionType.Valid()
}

// MemoActionDeposit carries no payload: the deposited asset and amount
// come from the transfer itself.
type MemoActionDeposit struct {
	MemoAction
}

type MemoActionMint struct {
	MemoAction
	Amount decimal.Decimal `json:"a"`
}

func (m MemoActionMint) Valid() bool {
	if !m.MemoAction.Valid() || m.ActionType != MATMint {
		return false
	}
	return m.Amount.IsPositive()
}

type MemoActionRedeem struct {
	MemoAction
	AssetId   string          `json:"as"`
	Amount    decimal.Decimal `json:"a"`
	RedeemAll bool            `json:"ra"`
}

func (m MemoActionRedeem) Valid() bool {
	if !m.MemoAction.Valid() || m.ActionType != MATRedeem {
		return false
	}
	if m.AssetId == "" {
		return false
	}
	return m.RedeemAll || m.Amount.IsPositive()
}

// MemoActionBurn settles debt with the transferred synthetic amount.
// BurnAll clears the whole debt and refunds any excess.
type MemoActionBurn struct {
	MemoAction
	BurnAll bool `json:"ba"`
}

func (m MemoActionBurn) Valid() bool {
	return m.MemoAction.Valid() && m.ActionType == MATBurn
}

type MemoActionDepositMint struct {
	MemoAction
	MintAmount decimal.Decimal `json:"ma"`
}

func (m MemoActionDepositMint) Valid() bool {
	if !m.MemoAction.Valid() || m.ActionType != MATDepositMint {
		return false
	}
	return m.MintAmount.IsPositive()
}

// MemoActionRedeemBurn burns the transferred synthetic amount and
// redeems the named collateral in one atomic step.
type MemoActionRedeemBurn struct {
	MemoAction
	AssetId string          `json:"as"`
	Amount  decimal.Decimal `json:"a"`
}

func (m MemoActionRedeemBurn) Valid() bool {
	if !m.MemoAction.Valid() || m.ActionType != MATRedeemBurn {
		return false
	}
	if m.AssetId == "" {
		return false
	}
	return m.Amount.IsPositive()
}

// MemoActionLiquidate covers the target's debt with the transferred
// synthetic amount and seizes the named collateral.
type MemoActionLiquidate struct {
	MemoAction
	TargetAccountId string `json:"ta"`
	AssetId         string `json:"as"`
}

func (m MemoActionLiquidate) Valid() bool {
	if !m.MemoAction.Valid() || m.ActionType != MATLiquidate {
		return false
	}
	if m.TargetAccountId == "" || m.AssetId == "" {
		return false
	}
	return true
}

func EncodeAnyMemo(a any) (string, error) {
	bytes, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

func DecodeSnapshotMemo(memo string) (*MemoAction, error) {
	snapshotMemoHex, err := hex.DecodeString(memo)
	if err != nil {
		return nil, err
	}

	snapshotMemo, err := base64.StdEncoding.DecodeString(string(snapshotMemoHex))
	if err != nil {
		return nil, err
	}

	var memoAction MemoAction
	err = json.Unmarshal([]byte(snapshotMemo), &memoAction)
	if err != nil {
		return nil, err
	}

	return &memoAction, nil
}

func DecodeSnapshotMemoAny(memo string, res any) error {
	snapshotMemoHex, err := hex.DecodeString(memo)
	if err != nil {
		return err
	}

	snapshotMemo, err := base64.StdEncoding.DecodeString(string(snapshotMemoHex))
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(snapshotMemo), res)
}

// IsRefundMemo recognizes the memo the vault stamps on refund payouts,
// so their echo snapshots are not processed as user actions.
func IsRefundMemo(memo string) (string, bool) {
	snapshotMemo, err := hex.DecodeString(memo)
	if err != nil {
		return "", false
	}

	// {request_id}#refund
	if strings.HasSuffix(string(snapshotMemo), "#refund") {
		return strings.TrimSuffix(string(snapshotMemo), "#refund"), true
	}

	return "", false
}
