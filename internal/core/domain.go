package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	SourceVoice      Source = "voice"
	SourceManual     Source = "manual"
	SourceAdjustment Source = "adjustment"
)

const (
	SpendingLimit GoalType = "spending_limit"
	SavingTarget  GoalType = "saving_target"
)

const (
	PeriodDaily   GoalPeriod = "daily"
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
	PeriodYearly  GoalPeriod = "yearly"
	PeriodCustom  GoalPeriod = "custom"
)

type (
	TransactionType string

	// Source records how a transaction entered the ledger.
	Source string

	GoalType   string
	GoalPeriod string

	// Transaction is one recorded income or expense event. WalletID and
	// CategoryID are weak references: they are never validated against the
	// wallet collection or the category dictionary, and deleting a wallet
	// leaves its transactions in place.
	Transaction struct {
		ID          string          `json:"id"`
		WalletID    string          `json:"wallet_id"`
		Type        TransactionType `json:"type"`
		Amount      int64           `json:"amount"`
		CategoryID  string          `json:"category_id"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
		CreatedBy   Source          `json:"created_by"`
	}

	// Wallet holds a stored baseline balance. The live balance is always
	// derived from the baseline plus the wallet's transactions.
	Wallet struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Balance   int64     `json:"balance"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		IsDefault bool      `json:"is_default"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Goal is declared for forward compatibility; no aggregate reads it yet.
	Goal struct {
		ID         string     `json:"id"`
		WalletID   string     `json:"wallet_id,omitempty"`
		Type       GoalType   `json:"type"`
		Name       string     `json:"name"`
		Amount     int64      `json:"amount"`
		Period     GoalPeriod `json:"period"`
		CategoryID string     `json:"category_id,omitempty"`
		StartDate  Date       `json:"start_date"`
		EndDate    *Date      `json:"end_date,omitempty"`
		IsActive   bool       `json:"is_active"`
	}

	// ParseResult is the ephemeral outcome of interpreting a transcript.
	// Description carries the transcript verbatim.
	ParseResult struct {
		Type         TransactionType `json:"type"`
		Amount       int64           `json:"amount"`
		Description  string          `json:"description"`
		CategoryID   string          `json:"category_id"`
		CategoryName string          `json:"category_name"`
		Date         Date            `json:"date"`
		Confidence   float64         `json:"confidence"`
	}

	// PeriodStats aggregates transactions over a month or a day.
	PeriodStats struct {
		Income  int64 `json:"income"`
		Expense int64 `json:"expense"`
		Balance int64 `json:"balance"`
	}

	// CategoryRank is one row of the monthly expense ranking.
	CategoryRank struct {
		CategoryID   string  `json:"category_id"`
		CategoryName string  `json:"category_name"`
		Total        int64   `json:"total"`
		Percent      float64 `json:"percent"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyWalletID    = errors.New("empty wallet id")
	ErrEmptyCategoryID  = errors.New("empty category id")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidGoal      = errors.New("invalid goal")
)

// GenerateID assigns a fresh UUID if the transaction has none yet.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

// Signed returns the amount with the sign implied by the type:
// income counts positive, expense negative.
func (t Transaction) Signed() int64 {
	if t.Type == Income {
		return t.Amount
	}
	return -t.Amount
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.WalletID) == "" {
		return ErrEmptyWalletID
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategoryID
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: too long (max 200 characters)", ErrInvalidDescription)
	}
	return nil
}

func (w *Wallet) GenerateID() {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (g *Goal) GenerateID() {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch g.Type {
	case SpendingLimit, SavingTarget:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidGoal, g.Type)
	}
	switch g.Period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodCustom:
	default:
		return fmt.Errorf("%w: unknown period %q", ErrInvalidGoal, g.Period)
	}
	if g.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if g.EndDate != nil && g.EndDate.Before(g.StartDate.Time) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidGoal)
	}
	return nil
}
