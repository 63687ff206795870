package economy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/julianstephens/spark/internal/ledger"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "spark.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}

	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}"))
		})
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	lc, err := ledger.New(ledger.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create ledger client: %v", err)
	}

	return NewService(store, lc, zerolog.Nop())
}

func setPoints(t *testing.T, s *Service, points int) {
	t.Helper()
	wallet, err := s.store.GetWallet()
	if err != nil {
		t.Fatalf("failed to get wallet: %v", err)
	}
	wallet.Points = points
	if err := s.store.SaveWallet(wallet); err != nil {
		t.Fatalf("failed to save wallet: %v", err)
	}
}

func TestPurchaseRejectsInsufficientBalance(t *testing.T) {
	requested := false
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	setPoints(t, s, 2)

	item := models.StoreItem{ID: 1, Name: "奶茶", Cost: 5}
	balance, _, err := s.Purchase(models.Profile{UserID: "u"}, item)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if balance != 2 {
		t.Errorf("balance must be untouched, got %d", balance)
	}
	if requested {
		t.Error("a rejected purchase must not reach the ledger")
	}

	wallet, _ := s.store.GetWallet()
	if wallet.Points != 2 {
		t.Errorf("stored balance must be untouched, got %d", wallet.Points)
	}
}

func TestPurchaseDebitSurvivesLedgerOutage(t *testing.T) {
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	setPoints(t, s, 10)

	item := models.StoreItem{ID: 1, Name: "补签卡", Cost: 3}
	balance, tx, err := s.Purchase(models.Profile{UserID: "u"}, item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 7 {
		t.Errorf("expected balance 7, got %d", balance)
	}
	s.RecordPurchase(context.Background(), tx)

	wallet, _ := s.store.GetWallet()
	if wallet.Points != 7 {
		t.Errorf("debit must survive a ledger outage, got %d", wallet.Points)
	}
}

func TestPurchaseMakesNoRemoteCall(t *testing.T) {
	requested := false
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
		w.Write([]byte("{}"))
	}))
	setPoints(t, s, 10)

	item := models.StoreItem{ID: 1, Name: "奶茶", Cost: 5}
	if _, _, err := s.Purchase(models.Profile{UserID: "u"}, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested {
		t.Error("the local debit must not touch the ledger")
	}
}

func TestRecordPurchaseLeavesWalletUntouched(t *testing.T) {
	s := newTestService(t, nil)
	setPoints(t, s, 5)

	_, tx, err := s.Purchase(models.Profile{UserID: "u"}, models.StoreItem{ID: 1, Name: "奶茶", Cost: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A daily award lands between the debit and the remote append.
	wallet, _ := s.store.GetWallet()
	wallet.Points++
	if err := s.store.SaveWallet(wallet); err != nil {
		t.Fatalf("failed to save wallet: %v", err)
	}

	s.RecordPurchase(context.Background(), tx)

	wallet, _ = s.store.GetWallet()
	if wallet.Points != 3 {
		t.Errorf("recording must not touch the wallet, got %d", wallet.Points)
	}
}

func TestFetchViewKeepsPreviousOnFailure(t *testing.T) {
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	prev := View{
		Items:        []models.StoreItem{{ID: 1, Name: "奶茶", Cost: 5}},
		Transactions: []models.Transaction{{ID: 1, UserID: "u", ItemName: "奶茶"}},
	}
	got := s.FetchView(context.Background(), prev)
	if len(got.Items) != 1 || len(got.Transactions) != 1 {
		t.Errorf("a failed fetch must return the previous view, got %d items, %d txs",
			len(got.Items), len(got.Transactions))
	}
}

func TestRefreshKeepsViewOnFailure(t *testing.T) {
	healthy := true
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case "/api/store":
			w.Write([]byte(`[{"id":1,"name":"奶茶","cost":5,"icon":"🧋"}]`))
		case "/api/transact":
			w.Write([]byte(`[{"id":1,"user_id":"u","item_name":"奶茶","cost":5}]`))
		}
	}))

	view := s.Refresh(context.Background())
	if len(view.Items) != 1 || len(view.Transactions) != 1 {
		t.Fatalf("expected populated view, got %d items, %d txs", len(view.Items), len(view.Transactions))
	}

	healthy = false
	view = s.Refresh(context.Background())
	if len(view.Items) != 1 || len(view.Transactions) != 1 {
		t.Errorf("a failed refresh must keep the previous view, got %d items, %d txs",
			len(view.Items), len(view.Transactions))
	}
}

func TestCardCount(t *testing.T) {
	txs := []models.Transaction{
		{UserID: "a", ItemName: "补签卡"},
		{UserID: "a", ItemName: "补签卡"},
		{UserID: "a", ItemName: "used_card"},
		{UserID: "a", ItemName: "奶茶"},
		{UserID: "b", ItemName: "补签卡"},
	}

	if got := CardCount(txs, "a"); got != 1 {
		t.Errorf("expected 1 card for a, got %d", got)
	}
	if got := CardCount(txs, "b"); got != 1 {
		t.Errorf("expected 1 card for b, got %d", got)
	}
	if got := CardCount(txs, "c"); got != 0 {
		t.Errorf("expected 0 cards for c, got %d", got)
	}

	// More usages than buys clamps at zero.
	over := []models.Transaction{
		{UserID: "a", ItemName: "used_card"},
		{UserID: "a", ItemName: "used_card"},
		{UserID: "a", ItemName: "补签卡"},
	}
	if got := CardCount(over, "a"); got != 0 {
		t.Errorf("count must clamp at zero, got %d", got)
	}

	// Pure: recomputation yields the same result.
	if CardCount(txs, "a") != CardCount(txs, "a") {
		t.Error("CardCount must be deterministic")
	}
}

func TestPersonalHistory(t *testing.T) {
	txs := []models.Transaction{
		{ID: 3, UserID: "a"},
		{ID: 2, UserID: "b"},
		{ID: 1, UserID: "a"},
	}

	mine := PersonalHistory(txs, "a")
	if len(mine) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(mine))
	}
	if mine[0].ID != 3 || mine[1].ID != 1 {
		t.Errorf("ledger order must be preserved, got %d, %d", mine[0].ID, mine[1].ID)
	}
}
