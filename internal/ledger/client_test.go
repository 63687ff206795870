package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julianstephens/spark/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing BaseURL")
	}
}

func TestListCatalog(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/store" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[{"id":2,"name":"补签卡","cost":3,"icon":"🎫","desc":"管理员添加","created_at":1700000000}]`))
	}))

	items, err := c.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.ID != 2 || item.Name != "补签卡" || item.Cost != 3 || item.Icon != "🎫" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestAppendTransactionUsesCamelCase(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transact" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"success":true}`))
	}))

	tx := models.Transaction{
		UserID:     "user_1",
		UserName:   "测试",
		UserAvatar: "🤠",
		ItemName:   "奶茶",
		ItemIcon:   "🧋",
		Cost:       5,
		DateStr:    "2026-03-01 09:00:00",
	}
	if err := c.AppendTransaction(context.Background(), tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The endpoint takes camelCase even though it returns snake_case rows.
	for _, key := range []string{"userId", "userName", "userAvatar", "itemName", "itemIcon", "cost", "date"} {
		if _, ok := captured[key]; !ok {
			t.Errorf("missing key %q in request body: %v", key, captured)
		}
	}
	if captured["date"] != "2026-03-01 09:00:00" {
		t.Errorf("unexpected date: %v", captured["date"])
	}
}

func TestListTransactions(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":9,"user_id":"u","user_name":"n","item_name":"奶茶","cost":5,"date_str":"2026-03-01 09:00:00"}]`))
	}))

	txs, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != 9 || txs[0].UserID != "u" || txs[0].DateStr != "2026-03-01 09:00:00" {
		t.Errorf("unexpected transactions: %+v", txs)
	}
}

func TestRemoveCatalogItem(t *testing.T) {
	var gotID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(`{"success":true}`))
	}))

	if err := c.RemoveCatalogItem(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "42" {
		t.Errorf("expected id query 42, got %q", gotID)
	}
}

func TestVerifyAdminSecret(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password == "sesame" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false}`))
	}))

	ok, err := c.VerifyAdminSecret(context.Background(), "sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected correct secret to verify")
	}

	// A wrong secret is a clean rejection, not an error.
	ok, err = c.VerifyAdminSecret(context.Background(), "wrong")
	if err != nil {
		t.Fatalf("a 401 must not be an error: %v", err)
	}
	if ok {
		t.Error("expected wrong secret to be rejected")
	}
}

func TestVerifyAdminSecretNonJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))

	// A gateway error page is not a verdict; it must read as the service
	// being unreachable, not as a wrong secret.
	ok, err := c.VerifyAdminSecret(context.Background(), "sesame")
	if err == nil {
		t.Error("a non-JSON body must surface an error")
	}
	if ok {
		t.Error("a non-JSON body must not verify the secret")
	}
}

func TestVerifyAdminSecretUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := c.VerifyAdminSecret(context.Background(), "sesame"); err == nil {
		t.Error("an unreachable verifier must surface a transport error")
	}
}
