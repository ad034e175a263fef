package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"chitieu/internal/catalog"
	"chitieu/internal/core"
	"chitieu/internal/parse"
)

// --- interpret ---

type interpretRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusUnprocessableEntity, "empty transcript")
		return
	}

	result := parse.Interpret(req.Transcript)
	if result == nil {
		writeError(w, http.StatusUnprocessableEntity, "no amount found in transcript")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- transactions ---

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeBody(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}

	created, err := s.ledger.AddTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateStats(created.Date)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeBody(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = r.PathValue("id")

	// The previous date may differ from the new one; both months go stale.
	if old, ok := s.findTransaction(r, t.ID); ok {
		s.invalidateStats(old.Date)
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateStats(updated.Date)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if old, ok := s.findTransaction(r, id); ok {
		s.invalidateStats(old.Date)
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findTransaction(r *http.Request, id string) (core.Transaction, bool) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		return core.Transaction{}, false
	}
	for _, t := range txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// --- wallets ---

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.ledger.Wallets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if wallets == nil {
		wallets = []core.Wallet{}
	}
	writeJSON(w, http.StatusOK, wallets)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var wl core.Wallet
	if err := decodeBody(r, &wl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.ledger.AddWallet(r.Context(), wl)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var wl core.Wallet
	if err := decodeBody(r, &wl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	wl.ID = r.PathValue("id")

	updated, err := s.ledger.UpdateWallet(r.Context(), wl)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balanceResponse struct {
	WalletID string `json:"wallet_id,omitempty"`
	Balance  int64  `json:"balance"`
}

func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	balance, err := s.ledger.WalletBalance(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{WalletID: id, Balance: balance})
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.TotalBalance(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// --- categories ---

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

// --- stats ---

// periodParams reads year/month query parameters, defaulting to the
// current month.
func periodParams(r *http.Request) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, core.ErrInvalidDate
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, core.ErrInvalidDate
		}
		month = n
	}
	return year, month, nil
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	key := monthKey(year, month)
	if stats, ok := s.monthlyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.ledger.MonthlyStats(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.monthlyCache.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	day := core.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	key := day.String()
	if stats, ok := s.dailyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.ledger.DailyStats(r.Context(), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.dailyCache.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCategoryRanking(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	key := monthKey(year, month)
	if ranking, ok := s.rankingCache.Get(key); ok {
		writeJSON(w, http.StatusOK, ranking)
		return
	}

	ranking, err := s.ledger.CategoryRanking(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ranking == nil {
		ranking = []core.CategoryRank{}
	}
	s.rankingCache.Set(key, ranking)
	writeJSON(w, http.StatusOK, ranking)
}

// --- goals ---

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.Goals(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.Goal
	if err := decodeBody(r, &g); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.ledger.AddGoal(r.Context(), g)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- salary ---

type salaryPayload struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	amount, err := s.ledger.MonthlySalary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salaryPayload{Amount: amount})
}

func (s *Server) handleSetSalary(w http.ResponseWriter, r *http.Request) {
	var p salaryPayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ledger.SetMonthlySalary(r.Context(), p.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salaryPayload{Amount: p.Amount})
}
