// Package ledger wraps the shared remote catalog and transaction log. It is
// pure request/response plumbing: every business rule about what may be
// purchased or appended lives with the callers.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/spark/internal/constants"
	"github.com/julianstephens/spark/internal/models"
)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the shared ledger API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a ledger client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListCatalog fetches all store items, newest first.
func (c *Client) ListCatalog(ctx context.Context) ([]models.StoreItem, error) {
	var items []models.StoreItem
	if err := c.do(ctx, http.MethodGet, "/api/store", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddCatalogItem publishes a new store item. Admin-gated by the caller.
func (c *Client) AddCatalogItem(ctx context.Context, name string, cost int, icon, desc string) error {
	body := struct {
		Name string `json:"name"`
		Cost int    `json:"cost"`
		Icon string `json:"icon"`
		Desc string `json:"desc"`
	}{name, cost, icon, desc}
	return c.do(ctx, http.MethodPost, "/api/store", nil, body, nil)
}

// RemoveCatalogItem deletes a store item by id. Admin-gated by the caller.
func (c *Client) RemoveCatalogItem(ctx context.Context, id int64) error {
	query := url.Values{"id": {fmt.Sprintf("%d", id)}}
	return c.do(ctx, http.MethodDelete, "/api/store", query, nil, nil)
}

// ListTransactions fetches the most recent transactions, newest first. The
// server already caps its result; the cap is re-applied here so a permissive
// deployment cannot grow the view unbounded.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transact", nil, nil, &txs); err != nil {
		return nil, err
	}
	if len(txs) > constants.TransactionFetchLimit {
		txs = txs[:constants.TransactionFetchLimit]
	}
	return txs, nil
}

// appendTransactionRequest is the wire shape the transact endpoint expects;
// it is camelCase unlike the snake_case rows it returns.
type appendTransactionRequest struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	ItemName   string `json:"itemName"`
	ItemIcon   string `json:"itemIcon"`
	Cost       int    `json:"cost"`
	Date       string `json:"date"`
}

// AppendTransaction records a purchase or card usage on the shared log.
func (c *Client) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	body := appendTransactionRequest{
		UserID:     tx.UserID,
		UserName:   tx.UserName,
		UserAvatar: tx.UserAvatar,
		ItemName:   tx.ItemName,
		ItemIcon:   tx.ItemIcon,
		Cost:       tx.Cost,
		Date:       tx.DateStr,
	}
	return c.do(ctx, http.MethodPost, "/api/transact", nil, body, nil)
}

// VerifyAdminSecret checks a candidate admin secret. A nil error with
// ok=false means the secret was rejected; a non-nil error means the
// verification service could not be reached, which callers must report
// distinctly from a wrong secret.
func (c *Client) VerifyAdminSecret(ctx context.Context, secret string) (bool, error) {
	body := struct {
		Password string `json:"password"`
	}{secret}

	data, err := json.Marshal(body)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/verify", bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	// The endpoint answers 200 or 401, both with a JSON body; either way
	// the body's success flag is the verdict. A body that is not JSON did
	// not come from the verifier (a gateway error page, say) and reads as
	// the service being unreachable, not as a wrong secret.
	var verdict struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("unexpected verify response: %w", err)
	}
	return verdict.Success, nil
}
