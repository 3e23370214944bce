package core

import (
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// hexEncodeMemo encodes an action the way a wallet transfer carries it.
func hexEncodeMemo(t *testing.T, a any) string {
	t.Helper()
	memo, err := EncodeAnyMemo(a)
	if err != nil {
		t.Fatalf("EncodeAnyMemo() error = %v", err)
	}
	return hex.EncodeToString([]byte(memo))
}

func TestDecodeSnapshotMemo(t *testing.T) {
	tests := []struct {
		name    string
		memo    string
		want    *MemoAction
		wantErr bool
	}{
		{
			name: "deposit",
			memo: hexEncodeMemo(t, MemoActionDeposit{MemoAction: MemoAction{ActionType: MATDeposit}}),
			want: &MemoAction{ActionType: MATDeposit},
		},
		{
			name: "mint keeps only the action type",
			memo: hexEncodeMemo(t, MemoActionMint{MemoAction: MemoAction{ActionType: MATMint}, Amount: decimal.NewFromInt(100)}),
			want: &MemoAction{ActionType: MATMint},
		},
		{
			name:    "not hex",
			memo:    "zz",
			wantErr: true,
		},
		{
			name:    "hex but not base64",
			memo:    hex.EncodeToString([]byte("!!!!")),
			wantErr: true,
		},
		{
			name:    "base64 but not json",
			memo:    hex.EncodeToString([]byte("bm90IGpzb24=")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSnapshotMemo(tt.memo)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeSnapshotMemo() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeSnapshotMemo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeSnapshotMemoAny(t *testing.T) {
	action := MemoActionLiquidate{
		MemoAction:      MemoAction{ActionType: MATLiquidate},
		TargetAccountId: "carol",
		AssetId:         "weth",
	}

	var got MemoActionLiquidate
	if err := DecodeSnapshotMemoAny(hexEncodeMemo(t, action), &got); err != nil {
		t.Errorf("DecodeSnapshotMemoAny() error = %v", err)
		return
	}
	if !reflect.DeepEqual(got, action) {
		t.Errorf("DecodeSnapshotMemoAny() = %v, want %v", got, action)
	}
}

func TestDecodeSnapshotMemoAnyAmounts(t *testing.T) {
	action := MemoActionRedeem{
		MemoAction: MemoAction{ActionType: MATRedeem},
		AssetId:    "weth",
		Amount:     decimal.RequireFromString("0.55"),
	}

	var got MemoActionRedeem
	if err := DecodeSnapshotMemoAny(hexEncodeMemo(t, action), &got); err != nil {
		t.Errorf("DecodeSnapshotMemoAny() error = %v", err)
		return
	}
	if got.AssetId != action.AssetId || !got.Amount.Equal(action.Amount) || got.RedeemAll {
		t.Errorf("DecodeSnapshotMemoAny() = %v, want %v", got, action)
	}
}

func TestIsRefundMemo(t *testing.T) {
	tests := []struct {
		name          string
		memo          string
		wantRequestId string
		wantOk        bool
	}{
		{
			name:          "refund",
			memo:          hex.EncodeToString([]byte("5a8bbc9b-4074-40ec-a061-d4b363bc2afb#refund")),
			wantRequestId: "5a8bbc9b-4074-40ec-a061-d4b363bc2afb",
			wantOk:        true,
		},
		{
			name:   "plain memo",
			memo:   hex.EncodeToString([]byte("hello")),
			wantOk: false,
		},
		{
			name:   "not hex",
			memo:   "zz",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestId, ok := IsRefundMemo(tt.memo)
			if ok != tt.wantOk {
				t.Errorf("IsRefundMemo() ok = %v, want %v", ok, tt.wantOk)
				return
			}
			if requestId != tt.wantRequestId {
				t.Errorf("IsRefundMemo() = %v, want %v", requestId, tt.wantRequestId)
			}
		})
	}
}

func TestMemoActionTypeValid(t *testing.T) {
	for _, typ := range []MemoActionType{MATDeposit, MATMint, MATRedeem, MATBurn, MATDepositMint, MATRedeemBurn, MATLiquidate} {
		if !typ.Valid() {
			t.Errorf("MemoActionType(%d).Valid() = false, want true", typ)
		}
	}
	if MemoActionType(0).Valid() {
		t.Errorf("MemoActionType(0).Valid() = true, want false")
	}
	if MemoActionType(8).Valid() {
		t.Errorf("MemoActionType(8).Valid() = true, want false")
	}
}

func TestValidActionTypeString(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   MemoActionType
		wantOk bool
	}{
		{name: "deposit", action: "Deposit", want: MATDeposit, wantOk: true},
		{name: "deposit and mint", action: "Deposit And Mint", want: MATDepositMint, wantOk: true},
		{name: "liquidate", action: "Liquidate", want: MATLiquidate, wantOk: true},
		{name: "unknown", action: "Borrow", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValidActionTypeString(tt.action)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("ValidActionTypeString(%q) = (%v, %v), want (%v, %v)", tt.action, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestMemoActionValid(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		check bool
	}{
		{
			name:  "mint without amount",
			valid: MemoActionMint{MemoAction: MemoAction{ActionType: MATMint}}.Valid(),
		},
		{
			name:  "mint with amount",
			valid: MemoActionMint{MemoAction: MemoAction{ActionType: MATMint}, Amount: decimal.NewFromInt(1)}.Valid(),
			check: true,
		},
		{
			name:  "redeem without asset",
			valid: MemoActionRedeem{MemoAction: MemoAction{ActionType: MATRedeem}, Amount: decimal.NewFromInt(1)}.Valid(),
		},
		{
			name:  "redeem all without amount",
			valid: MemoActionRedeem{MemoAction: MemoAction{ActionType: MATRedeem}, AssetId: "weth", RedeemAll: true}.Valid(),
			check: true,
		},
		{
			name:  "redeem with wrong type",
			valid: MemoActionRedeem{MemoAction: MemoAction{ActionType: MATBurn}, AssetId: "weth", Amount: decimal.NewFromInt(1)}.Valid(),
		},
		{
			name:  "burn",
			valid: MemoActionBurn{MemoAction: MemoAction{ActionType: MATBurn}}.Valid(),
			check: true,
		},
		{
			name:  "deposit mint without mint amount",
			valid: MemoActionDepositMint{MemoAction: MemoAction{ActionType: MATDepositMint}}.Valid(),
		},
		{
			name:  "redeem burn",
			valid: MemoActionRedeemBurn{MemoAction: MemoAction{ActionType: MATRedeemBurn}, AssetId: "weth", Amount: decimal.NewFromInt(1)}.Valid(),
			check: true,
		},
		{
			name:  "liquidate without target",
			valid: MemoActionLiquidate{MemoAction: MemoAction{ActionType: MATLiquidate}, AssetId: "weth"}.Valid(),
		},
		{
			name:  "liquidate",
			valid: MemoActionLiquidate{MemoAction: MemoAction{ActionType: MATLiquidate}, TargetAccountId: "carol", AssetId: "weth"}.Valid(),
			check: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.valid != tt.check {
				t.Errorf("Valid() = %v, want %v", tt.valid, tt.check)
			}
		})
	}
}
