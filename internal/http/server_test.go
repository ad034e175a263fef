package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
	"chitieu/internal/storage"
)

// memStore is an in-memory document store for handler tests.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[key]
	if !ok {
		return storage.ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (m *memStore) Put(ctx context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.docs[key] = raw
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := ledger.New(newMemStore())
	srv := NewServer(":0", svc, Options{
		RateLimitPerMinute: 1000,
		CacheSize:          10,
		CacheTTL:           time.Minute,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createWallet(t *testing.T, srv *Server, name string) core.Wallet {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/wallets", map[string]any{"name": name, "balance": 0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet: status %d, body %s", rec.Code, rec.Body.String())
	}
	var w core.Wallet
	decodeInto(t, rec, &w)
	return w
}

func createTransaction(t *testing.T, srv *Server, walletID string, typ core.TransactionType, amount int64, date string) core.Transaction {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
		"wallet_id":   walletID,
		"type":        typ,
		"amount":      amount,
		"category_id": "food",
		"description": "test entry",
		"date":        date,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d, body %s", rec.Code, rec.Body.String())
	}
	var tx core.Transaction
	decodeInto(t, rec, &tx)
	return tx
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, rec.Code)
		}
	}
}

func TestInterpretEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/interpret", map[string]string{"transcript": "Mua bánh mì 30k"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var result core.ParseResult
	decodeInto(t, rec, &result)

	if result.Amount != 30000 {
		t.Errorf("amount = %d, want 30000", result.Amount)
	}
	if result.Type != core.Expense {
		t.Errorf("type = %q, want expense", result.Type)
	}
	if result.CategoryID != "food" {
		t.Errorf("category = %q, want food", result.CategoryID)
	}
	if result.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", result.Confidence)
	}
	if result.Description != "Mua bánh mì 30k" {
		t.Errorf("description = %q, want verbatim transcript", result.Description)
	}
}

func TestInterpretNoAmount(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/interpret", map[string]string{"transcript": "không có gì"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestInterpretEmptyTranscript(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/interpret", map[string]string{"transcript": "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
}

func TestTransactionCRUD(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	tx := createTransaction(t, srv, w.ID, core.Expense, 30000, "2026-01-15")
	if tx.ID == "" {
		t.Fatal("created transaction has empty id")
	}

	rec := doJSON(t, srv, http.MethodGet, "/transactions", nil)
	var list []core.Transaction
	decodeInto(t, rec, &list)
	if len(list) != 1 || list[0].ID != tx.ID {
		t.Fatalf("list = %+v, want the created transaction", list)
	}

	rec = doJSON(t, srv, http.MethodPut, "/transactions/"+tx.ID, map[string]any{
		"wallet_id":   w.ID,
		"type":        core.Expense,
		"amount":      45000,
		"category_id": "food",
		"description": "edited entry",
		"date":        "2026-01-16",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated core.Transaction
	decodeInto(t, rec, &updated)
	if updated.Amount != 45000 {
		t.Errorf("updated amount = %d, want 45000", updated.Amount)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/transactions/"+tx.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	// Deleting an absent transaction is still a 204.
	rec = doJSON(t, srv, http.MethodDelete, "/transactions/"+tx.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat delete: status %d, want 204", rec.Code)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	rec := doJSON(t, srv, http.MethodPut, "/transactions/missing", map[string]any{
		"wallet_id":   w.ID,
		"type":        core.Expense,
		"amount":      1000,
		"category_id": "food",
		"description": "nope",
		"date":        "2026-01-01",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/transactions", map[string]any{
		"wallet_id":   "",
		"type":        "expense",
		"amount":      1000,
		"category_id": "food",
		"description": "no wallet",
		"date":        "2026-01-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestWalletCap(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < ledger.MaxWallets; i++ {
		createWallet(t, srv, fmt.Sprintf("Ví %d", i))
	}

	rec := doJSON(t, srv, http.MethodPost, "/wallets", map[string]any{"name": "một cái nữa"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}

func TestWalletBalanceEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	createTransaction(t, srv, w.ID, core.Income, 500000, "2026-02-01")
	createTransaction(t, srv, w.ID, core.Expense, 120000, "2026-02-02")

	rec := doJSON(t, srv, http.MethodGet, "/wallets/"+w.ID+"/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp balanceResponse
	decodeInto(t, rec, &resp)
	if resp.Balance != 380000 {
		t.Errorf("balance = %d, want 380000", resp.Balance)
	}

	rec = doJSON(t, srv, http.MethodGet, "/wallets/missing/balance", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing wallet balance: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/balance", nil)
	decodeInto(t, rec, &resp)
	if resp.Balance != 380000 {
		t.Errorf("total balance = %d, want 380000", resp.Balance)
	}
}

func TestMonthlyStatsCacheInvalidation(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	createTransaction(t, srv, w.ID, core.Expense, 100000, "2026-03-10")

	rec := doJSON(t, srv, http.MethodGet, "/stats/monthly?year=2026&month=3", nil)
	var stats core.PeriodStats
	decodeInto(t, rec, &stats)
	if stats.Expense != 100000 {
		t.Fatalf("expense = %d, want 100000", stats.Expense)
	}

	// A new transaction must show up despite the cached response.
	createTransaction(t, srv, w.ID, core.Expense, 50000, "2026-03-11")

	rec = doJSON(t, srv, http.MethodGet, "/stats/monthly?year=2026&month=3", nil)
	decodeInto(t, rec, &stats)
	if stats.Expense != 150000 {
		t.Errorf("expense after second transaction = %d, want 150000", stats.Expense)
	}
}

func TestDailyStats(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	createTransaction(t, srv, w.ID, core.Expense, 70000, "2026-04-05")
	createTransaction(t, srv, w.ID, core.Expense, 30000, "2026-04-06")

	rec := doJSON(t, srv, http.MethodGet, "/stats/daily?date=2026-04-05", nil)
	var stats core.PeriodStats
	decodeInto(t, rec, &stats)
	if stats.Expense != 70000 {
		t.Errorf("expense = %d, want 70000", stats.Expense)
	}

	rec = doJSON(t, srv, http.MethodGet, "/stats/daily?date=not-a-date", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", rec.Code)
	}
}

func TestCategoryRankingEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Tiền mặt")

	createTransaction(t, srv, w.ID, core.Expense, 80000, "2026-05-01")

	rec := doJSON(t, srv, http.MethodGet, "/stats/categories?year=2026&month=5", nil)
	var ranking []core.CategoryRank
	decodeInto(t, rec, &ranking)
	if len(ranking) != 1 {
		t.Fatalf("ranking length = %d, want 1", len(ranking))
	}
	if ranking[0].CategoryID != "food" || ranking[0].Percent != 100 {
		t.Errorf("ranking[0] = %+v, want food at 100%%", ranking[0])
	}
}

func TestBadStatsParams(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/stats/monthly?year=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad year: status %d, want 400", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/stats/monthly?month=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month 13: status %d, want 400", rec.Code)
	}
}

func TestGoalsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/goals", map[string]any{
		"type":       "spending_limit",
		"name":       "Ăn uống tháng này",
		"amount":     2000000,
		"period":     "monthly",
		"start_date": "2026-06-01",
		"is_active":  true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: status %d, body %s", rec.Code, rec.Body.String())
	}
	var g core.Goal
	decodeInto(t, rec, &g)

	rec = doJSON(t, srv, http.MethodGet, "/goals", nil)
	var goals []core.Goal
	decodeInto(t, rec, &goals)
	if len(goals) != 1 {
		t.Fatalf("goals length = %d, want 1", len(goals))
	}

	rec = doJSON(t, srv, http.MethodDelete, "/goals/"+g.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete goal: status %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodDelete, "/goals/"+g.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete goal: status %d, want 404", rec.Code)
	}
}

func TestSalaryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/salary", nil)
	var p salaryPayload
	decodeInto(t, rec, &p)
	if p.Amount != 0 {
		t.Errorf("initial salary = %d, want 0", p.Amount)
	}

	rec = doJSON(t, srv, http.MethodPut, "/salary", salaryPayload{Amount: 15000000})
	if rec.Code != http.StatusOK {
		t.Fatalf("set salary: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/salary", nil)
	decodeInto(t, rec, &p)
	if p.Amount != 15000000 {
		t.Errorf("salary = %d, want 15000000", p.Amount)
	}

	rec = doJSON(t, srv, http.MethodPut, "/salary", salaryPayload{Amount: -1})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative salary: status %d, want 422", rec.Code)
	}
}

func TestRateLimiting(t *testing.T) {
	svc := ledger.New(newMemStore())
	srv := NewServer(":0", svc, Options{RateLimitPerMinute: 2, CacheSize: 10, CacheTTL: time.Minute})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	body := map[string]string{"transcript": "cafe 35k"}
	var last int
	for i := 0; i < 3; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/interpret", body)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third POST: status %d, want 429", last)
	}

	// GET requests are never rate limited.
	rec := doJSON(t, srv, http.MethodGet, "/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET after limit: status %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/transactions", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestListCategories(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var cats []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	decodeInto(t, rec, &cats)
	if len(cats) == 0 {
		t.Fatal("no categories returned")
	}
}
