// Package economy manages the points balance and its reconciliation with
// the shared ledger. The balance is locally authoritative; the redeemable
// card count is never stored and always derived from the transaction log.
package economy

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/julianstephens/spark/internal/constants"
	"github.com/julianstephens/spark/internal/ledger"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
)

var ErrInsufficientPoints = errors.New("insufficient points")

// View is the last successfully fetched remote state. Both halves are
// replaced independently: a failed fetch leaves the previous value intact.
type View struct {
	Items        []models.StoreItem
	Transactions []models.Transaction
}

type Service struct {
	store  storage.Provider
	ledger *ledger.Client
	log    zerolog.Logger
	now    func() time.Time

	view View
}

func NewService(store storage.Provider, lc *ledger.Client, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: lc,
		log:    logger,
		now:    time.Now,
	}
}

// FetchView pulls the catalog and recent transactions, replacing each half
// of prev only on success. It never fails: a remote outage simply leaves the
// previous half standing. FetchView reads and writes no service state, so it
// is safe to run off the caller's main goroutine.
func (s *Service) FetchView(ctx context.Context, prev View) View {
	next := prev

	if items, err := s.ledger.ListCatalog(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog fetch failed, keeping previous view")
	} else {
		next.Items = items
	}

	if txs, err := s.ledger.ListTransactions(ctx); err != nil {
		s.log.Warn().Err(err).Msg("transaction fetch failed, keeping previous view")
	} else {
		next.Transactions = txs
	}

	return next
}

// Refresh updates the cached view. Single-goroutine callers only; concurrent
// callers hold their own view and use FetchView directly.
func (s *Service) Refresh(ctx context.Context) View {
	s.view = s.FetchView(ctx, s.view)
	return s.view
}

// Balance returns the current local points balance.
func (s *Service) Balance() (int, error) {
	wallet, err := s.store.GetWallet()
	if err != nil {
		return 0, err
	}
	return wallet.Points, nil
}

// Purchase spends points on a store item. The local debit is the commit
// point and runs synchronously on the caller's goroutine; Purchase touches
// nothing remote. The returned transaction is handed to RecordPurchase,
// which may run later and in the background. Returns the new balance.
func (s *Service) Purchase(profile models.Profile, item models.StoreItem) (int, models.Transaction, error) {
	wallet, err := s.store.GetWallet()
	if err != nil {
		return 0, models.Transaction{}, err
	}
	if wallet.Points < item.Cost {
		return wallet.Points, models.Transaction{}, ErrInsufficientPoints
	}

	wallet.Points -= item.Cost
	if err := s.store.SaveWallet(wallet); err != nil {
		return 0, models.Transaction{}, err
	}

	tx := models.Transaction{
		UserID:     profile.UserID,
		UserName:   profile.Nickname,
		UserAvatar: profile.Avatar,
		ItemName:   item.Name,
		ItemIcon:   item.Icon,
		Cost:       item.Cost,
		DateStr:    s.now().Format(constants.DateTimeFormat),
	}
	return wallet.Points, tx, nil
}

// RecordPurchase appends a committed purchase to the shared ledger,
// best-effort. The debit is never rolled back on failure; the miss is logged
// and left to administrative reconciliation. RecordPurchase touches the
// network only, never local state.
func (s *Service) RecordPurchase(ctx context.Context, tx models.Transaction) {
	if err := s.ledger.AppendTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Str("item", tx.ItemName).Msg("failed to record purchase on ledger")
	}
}

// CardCount derives the redeemable retroactive-card balance for a user from
// a transaction list. Pure: recomputing on the same list yields the same
// result, and the count never goes negative.
func CardCount(txs []models.Transaction, userID string) int {
	var bought, used int
	for _, tx := range txs {
		if tx.UserID != userID {
			continue
		}
		switch tx.ItemName {
		case constants.RetroCardItemName:
			bought++
		case constants.UsedCardMarker:
			used++
		}
	}
	if bought < used {
		return 0
	}
	return bought - used
}

// PersonalHistory filters a transaction list down to one user, preserving
// ledger order.
func PersonalHistory(txs []models.Transaction, userID string) []models.Transaction {
	var mine []models.Transaction
	for _, tx := range txs {
		if tx.UserID == userID {
			mine = append(mine, tx)
		}
	}
	return mine
}
