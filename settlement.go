package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SynthForge/core/utils"
)

// SettlementService turns settled wallet snapshots into engine
// operations. Each snapshot produces exactly one payment row keyed by a
// request id derived from the snapshot id, so replays are no-ops.
// Engine rejections mark the payment failed and refund the transferred
// funds instead of bubbling up.
type SettlementService struct {
	clk clock.Clock
	log Log

	engine    *Engine
	snapshots SnapshotStore
	payments  PaymentStore
	payouts   PayoutStore
}

func NewSettlementService(clk clock.Clock, log Log, engine *Engine, snapshots SnapshotStore, payments PaymentStore, payouts PayoutStore) *SettlementService {
	return &SettlementService{
		clk:       clk,
		log:       log,
		engine:    engine,
		snapshots: snapshots,
		payments:  payments,
		payouts:   payouts,
	}
}

func (s *SettlementService) HandleSnapshot(ctx context.Context, snapshot *Snapshot) error {
	// our own refund payouts echo back as snapshots
	if _, ok := IsRefundMemo(snapshot.Memo); ok {
		return nil
	}

	if _, err := s.snapshots.GetSnapshotById(ctx, snapshot.SnapshotId); err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	if err := s.snapshots.InsertSnapshot(ctx, snapshot); err != nil {
		return err
	}

	requestId := utils.GenUuidFromStrings("payment", snapshot.SnapshotId)

	memoAction, err := DecodeSnapshotMemo(snapshot.Memo)
	if err != nil || !memoAction.ActionType.Valid() {
		s.log.Warn().Str("snapshot", snapshot.SnapshotId).Msg("unrecognized memo, refunding")
		return s.refund(ctx, snapshot, requestId, snapshot.Amount)
	}

	payment := NewPayment(s.clk, requestId, snapshot.SnapshotId, snapshot.UserId, memoAction.ActionType, snapshot.AssetId, snapshot.Amount)
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return err
	}

	if err := s.dispatch(ctx, snapshot, payment); err != nil {
		payment.UpdateStatus(s.clk, PaymentStatusFailed, err.Error())
		if uerr := s.payments.UpsertPayment(ctx, payment); uerr != nil {
			return uerr
		}
		s.log.Warn().Str("snapshot", snapshot.SnapshotId).Msgf("action %s failed: %v", memoAction.ActionType, err)
		return s.refund(ctx, snapshot, requestId, snapshot.Amount)
	}

	payment.UpdateStatus(s.clk, PaymentStatusConfirmed, "")
	return s.payments.UpsertPayment(ctx, payment)
}

func (s *SettlementService) dispatch(ctx context.Context, snapshot *Snapshot, payment *Payment) error {
	switch payment.Action {
	case MATDeposit:
		return s.engine.DepositCollateral(ctx, snapshot.UserId, snapshot.AssetId, snapshot.Amount)

	case MATMint:
		var action MemoActionMint
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		return s.engine.MintSynthetic(ctx, snapshot.UserId, action.Amount)

	case MATRedeem:
		var action MemoActionRedeem
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		amount := action.Amount
		if action.RedeemAll {
			balance, err := s.engine.GetCollateralBalance(ctx, snapshot.UserId, action.AssetId)
			if err != nil {
				return err
			}
			amount = balance
			payment.Extra.MetaMap = &MetaMap{RedeemAll: true}
		}
		return s.engine.RedeemCollateral(ctx, snapshot.UserId, action.AssetId, amount)

	case MATBurn:
		var action MemoActionBurn
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		if snapshot.AssetId != s.engine.SyntheticAssetId() {
			return errors.Errorf("burn settles in the synthetic asset, got %s", snapshot.AssetId)
		}
		if action.BurnAll {
			return s.burnAll(ctx, snapshot, payment)
		}
		return s.engine.BurnSynthetic(ctx, snapshot.UserId, snapshot.Amount)

	case MATDepositMint:
		var action MemoActionDepositMint
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		return s.engine.DepositAndMint(ctx, snapshot.UserId, snapshot.AssetId, snapshot.Amount, action.MintAmount)

	case MATRedeemBurn:
		var action MemoActionRedeemBurn
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		if snapshot.AssetId != s.engine.SyntheticAssetId() {
			return errors.Errorf("burn settles in the synthetic asset, got %s", snapshot.AssetId)
		}
		return s.engine.RedeemForSynthetic(ctx, snapshot.UserId, action.AssetId, action.Amount, snapshot.Amount)

	case MATLiquidate:
		var action MemoActionLiquidate
		if err := DecodeSnapshotMemoAny(snapshot.Memo, &action); err != nil {
			return err
		}
		if !action.Valid() {
			return ErrInvalidMemo
		}
		if snapshot.AssetId != s.engine.SyntheticAssetId() {
			return errors.Errorf("liquidation settles in the synthetic asset, got %s", snapshot.AssetId)
		}
		result, err := s.engine.Liquidate(ctx, snapshot.UserId, action.TargetAccountId, action.AssetId, snapshot.Amount)
		if err != nil {
			return err
		}
		payment.Extra.LiquidateResult = result
		return nil

	default:
		return ErrInvalidMemo
	}
}

// burnAll clears the whole debt and refunds whatever the transfer
// carried beyond it.
func (s *SettlementService) burnAll(ctx context.Context, snapshot *Snapshot, payment *Payment) error {
	info, err := s.engine.GetAccountInformation(ctx, snapshot.UserId)
	if err != nil {
		return err
	}
	debt := info.TotalDebt
	if snapshot.Amount.LessThan(debt) {
		return errors.Errorf("transferred %s cannot clear debt of %s", snapshot.Amount, debt)
	}

	if err := s.engine.BurnSynthetic(ctx, snapshot.UserId, debt); err != nil {
		return err
	}
	payment.Extra.MetaMap = &MetaMap{BurnAll: true}

	if excess := snapshot.Amount.Sub(debt); excess.IsPositive() {
		if err := s.refund(ctx, snapshot, payment.RequestId, excess); err != nil {
			return err
		}
	}
	return nil
}

// refund returns transferred funds to the sender. The payout id derives
// from the snapshot id, so a snapshot is refunded at most once.
func (s *SettlementService) refund(ctx context.Context, snapshot *Snapshot, requestId string, amount decimal.Decimal) error {
	payout := NewPayout(s.clk, utils.GenUuidFromStrings("refund", snapshot.SnapshotId), snapshot.UserId, snapshot.AssetId, amount, requestId+"#refund")
	if err := s.payouts.CreatePayout(ctx, payout); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil
		}
		return err
	}

	s.log.Info().Str("snapshot", snapshot.SnapshotId).Msgf("refunded %s %s", amount, snapshot.AssetId)
	return nil
}
