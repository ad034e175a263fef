// Package ledger is the transaction/wallet store and the home of every
// derived figure: live balances, monthly and daily totals, category
// rankings. Nothing derived is ever persisted; each aggregate is
// recomputed from the stored collections on demand.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"chitieu/internal/catalog"
	"chitieu/internal/core"
	"chitieu/internal/storage"
)

// Document keys in the persistent store. Each key holds one whole
// JSON document; mutations rewrite the document in full.
const (
	keyWallets      = "chitieu:wallets"
	keyTransactions = "chitieu:transactions"
	keyGoals        = "chitieu:goals"
	keySalary       = "chitieu:salary"
)

// MaxWallets is the user-facing wallet cap, enforced here at the
// mutation boundary; the storage layer itself carries no policy.
const MaxWallets = 5

var (
	ErrWalletLimit         = errors.New("wallet limit reached")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
)

// Store is the document persistence the service runs on.
type Store interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// load reads a document, treating a never-written key as an empty
// collection (the first-run case).
func load[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	err := s.Get(ctx, key, &v)
	if errors.Is(err, storage.ErrNotFound) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	return v, nil
}

// --- transactions ---

// Transactions returns the collection in stored order. New entries are
// prepended, so the stored order is newest-first by insertion; callers
// that need a different order must sort themselves.
func (s *Service) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return load[[]core.Transaction](ctx, s.store, keyTransactions)
}

// AddTransaction stores a new transaction with a generated id and
// creation timestamp. WalletID and CategoryID are taken on trust; they
// are weak references and are not checked against the wallet
// collection or the category dictionary.
func (s *Service) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transactions: %w", err)
	}

	t.ID = ""
	t.GenerateID()
	t.CreatedAt = time.Now()
	if t.CreatedBy == "" {
		t.CreatedBy = core.SourceManual
	}

	txs = append([]core.Transaction{t}, txs...)
	if err := s.store.Put(ctx, keyTransactions, txs); err != nil {
		return core.Transaction{}, fmt.Errorf("save transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", t.ID, "type", t.Type, "amount", t.Amount,
		"category", t.CategoryID, "wallet", t.WalletID, "source", t.CreatedBy)
	return t, nil
}

// UpdateTransaction replaces the editable fields of an existing
// transaction. ID, CreatedAt and CreatedBy are preserved.
func (s *Service) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transactions: %w", err)
	}

	for i := range txs {
		if txs[i].ID != t.ID {
			continue
		}
		t.CreatedAt = txs[i].CreatedAt
		t.CreatedBy = txs[i].CreatedBy
		txs[i] = t
		if err := s.store.Put(ctx, keyTransactions, txs); err != nil {
			return core.Transaction{}, fmt.Errorf("save transactions: %w", err)
		}
		slog.InfoContext(ctx, "Transaction updated", "id", t.ID)
		return t, nil
	}
	return core.Transaction{}, ErrTransactionNotFound
}

// DeleteTransaction removes the entry with the given id. Deleting an
// absent id is a no-op, not an error.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	kept := txs[:0]
	for _, t := range txs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(txs) {
		return nil
	}

	if err := s.store.Put(ctx, keyTransactions, kept); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// --- wallets ---

func (s *Service) Wallets(ctx context.Context) ([]core.Wallet, error) {
	return load[[]core.Wallet](ctx, s.store, keyWallets)
}

// AddWallet creates a wallet. The cap of MaxWallets is checked here;
// the IsDefault flag is stored as given, with no uniqueness rule
// (last writer wins).
func (s *Service) AddWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, fmt.Errorf("validate wallet: %w", err)
	}

	wallets, err := s.Wallets(ctx)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("load wallets: %w", err)
	}
	if len(wallets) >= MaxWallets {
		return core.Wallet{}, ErrWalletLimit
	}

	w.ID = ""
	w.GenerateID()
	w.CreatedAt = time.Now()

	wallets = append(wallets, w)
	if err := s.store.Put(ctx, keyWallets, wallets); err != nil {
		return core.Wallet{}, fmt.Errorf("save wallets: %w", err)
	}

	slog.InfoContext(ctx, "Wallet added", "id", w.ID, "name", w.Name, "default", w.IsDefault)
	return w, nil
}

func (s *Service) UpdateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, fmt.Errorf("validate wallet: %w", err)
	}

	wallets, err := s.Wallets(ctx)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("load wallets: %w", err)
	}
	for i := range wallets {
		if wallets[i].ID != w.ID {
			continue
		}
		w.CreatedAt = wallets[i].CreatedAt
		wallets[i] = w
		if err := s.store.Put(ctx, keyWallets, wallets); err != nil {
			return core.Wallet{}, fmt.Errorf("save wallets: %w", err)
		}
		slog.InfoContext(ctx, "Wallet updated", "id", w.ID)
		return w, nil
	}
	return core.Wallet{}, ErrWalletNotFound
}

// DeleteWallet removes the wallet record only. Transactions that
// reference it are deliberately left in place: history survives, and
// the orphans simply stop contributing to any wallet's balance.
func (s *Service) DeleteWallet(ctx context.Context, id string) error {
	wallets, err := s.Wallets(ctx)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	kept := wallets[:0]
	for _, w := range wallets {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(wallets) {
		return ErrWalletNotFound
	}

	if err := s.store.Put(ctx, keyWallets, kept); err != nil {
		return fmt.Errorf("save wallets: %w", err)
	}
	slog.InfoContext(ctx, "Wallet deleted", "id", id)
	return nil
}

// EnsureDefaultWallet seeds the documented first-run default: a single
// default wallet with zero baseline balance. It does nothing once any
// wallet exists.
func (s *Service) EnsureDefaultWallet(ctx context.Context, name string) error {
	wallets, err := s.Wallets(ctx)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}
	if len(wallets) > 0 {
		return nil
	}

	w := core.Wallet{
		Name:      name,
		Balance:   0,
		Icon:      "account-balance-wallet",
		Color:     "#4CAF50",
		IsDefault: true,
		CreatedAt: time.Now(),
	}
	w.GenerateID()

	if err := s.store.Put(ctx, keyWallets, []core.Wallet{w}); err != nil {
		return fmt.Errorf("save wallets: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default wallet", "id", w.ID, "name", w.Name)
	return nil
}

// --- goals ---

func (s *Service) Goals(ctx context.Context) ([]core.Goal, error) {
	return load[[]core.Goal](ctx, s.store, keyGoals)
}

func (s *Service) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}

	goals, err := s.Goals(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goals: %w", err)
	}

	g.ID = ""
	g.GenerateID()
	goals = append(goals, g)
	if err := s.store.Put(ctx, keyGoals, goals); err != nil {
		return core.Goal{}, fmt.Errorf("save goals: %w", err)
	}

	slog.InfoContext(ctx, "Goal added", "id", g.ID, "type", g.Type, "name", g.Name)
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	goals, err := s.Goals(ctx)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}

	kept := goals[:0]
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(goals) {
		return ErrGoalNotFound
	}

	if err := s.store.Put(ctx, keyGoals, kept); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// --- monthly salary ---

// MonthlySalary returns the stored salary scalar, 0 when never set.
func (s *Service) MonthlySalary(ctx context.Context) (int64, error) {
	return load[int64](ctx, s.store, keySalary)
}

func (s *Service) SetMonthlySalary(ctx context.Context, amount int64) error {
	if amount < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.Put(ctx, keySalary, amount); err != nil {
		return fmt.Errorf("save salary: %w", err)
	}
	return nil
}

// --- derived aggregates ---

// WalletBalance derives the live balance: the stored baseline plus the
// signed sum of every transaction referencing the wallet.
func (s *Service) WalletBalance(ctx context.Context, walletID string) (int64, error) {
	wallets, err := s.Wallets(ctx)
	if err != nil {
		return 0, fmt.Errorf("load wallets: %w", err)
	}

	var wallet *core.Wallet
	for i := range wallets {
		if wallets[i].ID == walletID {
			wallet = &wallets[i]
			break
		}
	}
	if wallet == nil {
		return 0, ErrWalletNotFound
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	balance := wallet.Balance
	for _, t := range txs {
		if t.WalletID == walletID {
			balance += t.Signed()
		}
	}
	return balance, nil
}

// TotalBalance sums WalletBalance over all existing wallets. Orphaned
// transactions (pointing at deleted wallets) contribute nothing.
func (s *Service) TotalBalance(ctx context.Context) (int64, error) {
	wallets, err := s.Wallets(ctx)
	if err != nil {
		return 0, fmt.Errorf("load wallets: %w", err)
	}
	txs, err := s.Transactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	byWallet := make(map[string]int64, len(wallets))
	for _, t := range txs {
		byWallet[t.WalletID] += t.Signed()
	}

	var total int64
	for _, w := range wallets {
		total += w.Balance + byWallet[w.ID]
	}
	return total, nil
}

// MonthlyStats aggregates income, expense and their difference over
// transactions dated in the given year and month.
func (s *Service) MonthlyStats(ctx context.Context, year, month int) (core.PeriodStats, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("load transactions: %w", err)
	}

	var stats core.PeriodStats
	for _, t := range txs {
		if !t.Date.InMonth(year, month) {
			continue
		}
		if t.Type == core.Income {
			stats.Income += t.Amount
		} else {
			stats.Expense += t.Amount
		}
	}
	stats.Balance = stats.Income - stats.Expense
	return stats, nil
}

// DailyStats is the same aggregation keyed by exact calendar date.
func (s *Service) DailyStats(ctx context.Context, day core.Date) (core.PeriodStats, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("load transactions: %w", err)
	}

	var stats core.PeriodStats
	for _, t := range txs {
		if !t.Date.SameDay(day) {
			continue
		}
		if t.Type == core.Income {
			stats.Income += t.Amount
		} else {
			stats.Expense += t.Amount
		}
	}
	stats.Balance = stats.Income - stats.Expense
	return stats, nil
}

// CategoryRanking groups the month's expense transactions by category,
// descending by summed amount, with each category's share of the
// month's total expense. Ties break on category id for determinism.
func (s *Service) CategoryRanking(ctx context.Context, year, month int) ([]core.CategoryRank, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	totals := map[string]int64{}
	var monthExpense int64
	for _, t := range txs {
		if t.Type != core.Expense || !t.Date.InMonth(year, month) {
			continue
		}
		totals[t.CategoryID] += t.Amount
		monthExpense += t.Amount
	}

	ranking := make([]core.CategoryRank, 0, len(totals))
	for id, total := range totals {
		name := id
		if c, ok := catalog.ByID(id); ok {
			name = c.Name
		}
		rank := core.CategoryRank{CategoryID: id, CategoryName: name, Total: total}
		if monthExpense > 0 {
			rank.Percent = float64(total) * 100 / float64(monthExpense)
		}
		ranking = append(ranking, rank)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Total != ranking[j].Total {
			return ranking[i].Total > ranking[j].Total
		}
		return ranking[i].CategoryID < ranking[j].CategoryID
	})
	return ranking, nil
}
