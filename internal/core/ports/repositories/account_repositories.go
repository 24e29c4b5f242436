package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves accounts matching the filter, ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountTxSupport defines account operations available inside a unit of work.
type AccountTxSupport interface {
	// FindAccountsByIDsForShare returns the requested accounts, holding a share lock so they
	// cannot be deactivated until the unit of work ends. Missing IDs are simply absent.
	FindAccountsByIDsForShare(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// SaveAccountInTx persists a new account inside the unit of work. A duplicate code yields
	// apperrors.ErrDuplicate.
	SaveAccountInTx(ctx context.Context, account domain.Account) error

	// DeactivateAccountInTx marks an account inactive and returns its previous state.
	DeactivateAccountInTx(ctx context.Context, accountID string, userID string, now time.Time) (*domain.Account, error)
}

// AccountRepositoryFacade combines account reads with the unit of work that owns writes.
type AccountRepositoryFacade interface {
	AccountReader
	UnitOfWork
}
