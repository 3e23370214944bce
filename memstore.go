package core

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// MemoryStore implements every store interface in memory. Rows are
// copied on the way in and out, so engine-held clones never alias
// stored state. It reports the gorm sentinel errors, keeping the
// contract identical to a gorm-backed store.
type MemoryStore struct {
	mu sync.RWMutex

	accounts    map[string]*Account
	collaterals map[string]*Collateral
	debts       map[string]*DebtPosition
	operations  []*Operation
	payments    map[string]*Payment

	snapshots     map[string]*Snapshot
	snapshotOrder []string

	payouts     map[string]*Payout
	payoutOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:    make(map[string]*Account),
		collaterals: make(map[string]*Collateral),
		debts:       make(map[string]*DebtPosition),
		payments:    make(map[string]*Payment),
		snapshots:   make(map[string]*Snapshot),
		payouts:     make(map[string]*Payout),
	}
}

// LedgerService bundles the store for engine construction.
func (s *MemoryStore) LedgerService() LedgerService {
	return LedgerService{
		AccountStore:    s,
		CollateralStore: s,
		DebtStore:       s,
	}
}

func collateralKey(accountId, assetId string) string {
	return accountId + ":" + assetId
}

func (s *MemoryStore) GetAccount(ctx context.Context, accountId string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account.Clone(), nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Id]; ok {
		return gorm.ErrDuplicatedKey
	}
	s.accounts[account.Id] = account.Clone()
	return nil
}

func (s *MemoryStore) UpdateAccount(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.Id] = account.Clone()
	return nil
}

func (s *MemoryStore) FindCollateral(ctx context.Context, accountId, assetId string) (*Collateral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collateral, ok := s.collaterals[collateralKey(accountId, assetId)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return collateral.Clone(), nil
}

func (s *MemoryStore) ListCollaterals(ctx context.Context, accountId string) ([]*Collateral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var collaterals []*Collateral
	for _, collateral := range s.collaterals {
		if collateral.AccountId == accountId {
			collaterals = append(collaterals, collateral.Clone())
		}
	}
	sort.Slice(collaterals, func(i, j int) bool {
		return collaterals[i].AssetId < collaterals[j].AssetId
	})
	return collaterals, nil
}

func (s *MemoryStore) CreateCollateral(ctx context.Context, collateral *Collateral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := collateralKey(collateral.AccountId, collateral.AssetId)
	if _, ok := s.collaterals[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	s.collaterals[key] = collateral.Clone()
	return nil
}

func (s *MemoryStore) UpdateCollateral(ctx context.Context, collateral *Collateral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collaterals[collateralKey(collateral.AccountId, collateral.AssetId)] = collateral.Clone()
	return nil
}

func (s *MemoryStore) FindDebt(ctx context.Context, accountId string) (*DebtPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	debt, ok := s.debts[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return debt.Clone(), nil
}

func (s *MemoryStore) CreateDebt(ctx context.Context, debt *DebtPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.debts[debt.AccountId]; ok {
		return gorm.ErrDuplicatedKey
	}
	s.debts[debt.AccountId] = debt.Clone()
	return nil
}

func (s *MemoryStore) UpdateDebt(ctx context.Context, debt *DebtPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debts[debt.AccountId] = debt.Clone()
	return nil
}

func (s *MemoryStore) CreateOperation(ctx context.Context, operation *Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *operation
	s.operations = append(s.operations, &cp)
	return nil
}

// ListOperations returns journal rows newest first. Zero values disable
// the respective filter.
func (s *MemoryStore) ListOperations(ctx context.Context, accountId string, op MemoActionType, createdBeforeAt, limit int64) ([]Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var operations []Operation
	for i := len(s.operations) - 1; i >= 0; i-- {
		operation := s.operations[i]
		if accountId != "" && operation.AccountId != accountId {
			continue
		}
		if op != 0 && operation.Op != op {
			continue
		}
		if createdBeforeAt > 0 && operation.CreatedAt >= createdBeforeAt {
			continue
		}
		operations = append(operations, *operation)
		if limit > 0 && int64(len(operations)) >= limit {
			break
		}
	}
	return operations, nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, payment *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[payment.RequestId]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *payment
	s.payments[payment.RequestId] = &cp
	return nil
}

func (s *MemoryStore) UpsertPayment(ctx context.Context, payment *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *payment
	s.payments[payment.RequestId] = &cp
	return nil
}

func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, requestId string, status PaymentStatus, message string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[requestId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	payment.Status = status
	payment.Message = message
	payment.UpdatedAt = updatedAt
	return nil
}

func (s *MemoryStore) GetPaymentByRequestId(ctx context.Context, requestId string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[requestId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *payment
	return &cp, nil
}

func (s *MemoryStore) InsertSnapshot(ctx context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[snapshot.SnapshotId]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *snapshot
	s.snapshots[snapshot.SnapshotId] = &cp
	s.snapshotOrder = append(s.snapshotOrder, snapshot.SnapshotId)
	return nil
}

func (s *MemoryStore) GetSnapshotById(ctx context.Context, snapshotId string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[snapshotId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *snapshot
	return &cp, nil
}

func (s *MemoryStore) GetLatestSnapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshotOrder) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.snapshots[s.snapshotOrder[len(s.snapshotOrder)-1]]
	return &cp, nil
}

func (s *MemoryStore) CreatePayout(ctx context.Context, payout *Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payouts[payout.RequestId]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *payout
	s.payouts[payout.RequestId] = &cp
	s.payoutOrder = append(s.payoutOrder, payout.RequestId)
	return nil
}

func (s *MemoryStore) UpdatePayoutStatus(ctx context.Context, requestId string, status PayoutStatus, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payout, ok := s.payouts[requestId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	payout.Status = status
	payout.UpdatedAt = updatedAt
	return nil
}

func (s *MemoryStore) GetPayoutByRequestId(ctx context.Context, requestId string) (*Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payout, ok := s.payouts[requestId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *payout
	return &cp, nil
}

func (s *MemoryStore) ListPayoutsByStatus(ctx context.Context, status PayoutStatus, limit int64) ([]*Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payouts []*Payout
	for _, requestId := range s.payoutOrder {
		payout := s.payouts[requestId]
		if payout.Status != status {
			continue
		}
		cp := *payout
		payouts = append(payouts, &cp)
		if limit > 0 && int64(len(payouts)) >= limit {
			break
		}
	}
	return payouts, nil
}
