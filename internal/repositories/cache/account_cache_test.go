package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_service/internal/repositories/memory"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = time.Minute

func seed(t *testing.T, store *memory.Store, accounts ...domain.Account) {
	t.Helper()
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for _, acc := range accounts {
			if err := tx.SaveAccountInTx(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func account(id, code string, typ domain.AccountType) domain.Account {
	return domain.Account{
		AccountID:     id,
		Code:          code,
		Name:          code,
		AccountType:   typ,
		NormalBalance: domain.DefaultNormalBalance(typ),
		IsActive:      true,
	}
}

func TestListKey(t *testing.T) {
	revenue := domain.Revenue
	assert.Equal(t, "ledger:accounts:list:active:any", listKey(domain.AccountFilter{ActiveOnly: true}))
	assert.Equal(t, "ledger:accounts:list:all:revenue", listKey(domain.AccountFilter{Type: &revenue}))
	assert.Len(t, allListKeys(), 12)
}

func TestListAccounts_MissThenHit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, account("a1", "1000", domain.Asset), account("a2", "4000", domain.Revenue))

	client, mock := redismock.NewClientMock()
	repo := NewCachedAccountRepository(store, client, testTTL)

	filter := domain.AccountFilter{ActiveOnly: true}
	key := listKey(filter)
	expected, err := store.ListAccounts(ctx, filter)
	require.NoError(t, err)
	payload, err := json.Marshal(expected)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, testTTL).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(payload))

	first, err := repo.ListAccounts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, expected, first)

	second, err := repo.ListAccounts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, expected, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccounts_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, account("a1", "1000", domain.Asset))

	client, mock := redismock.NewClientMock()
	repo := NewCachedAccountRepository(store, client, testTTL)

	filter := domain.AccountFilter{}
	key := listKey(filter)
	expected, err := store.ListAccounts(ctx, filter)
	require.NoError(t, err)
	payload, err := json.Marshal(expected)
	require.NoError(t, err)

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, payload, testTTL).SetErr(errors.New("connection refused"))

	accounts, err := repo.ListAccounts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, expected, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_InvalidatesOnCommitOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	client, mock := redismock.NewClientMock()
	repo := NewCachedAccountRepository(store, client, testTTL)

	failed := errors.New("boom")
	err := repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return failed
	})
	assert.ErrorIs(t, err, failed)

	mock.ExpectDel(allListKeys()...).SetVal(1)
	err = repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.SaveAccountInTx(ctx, account("a1", "1000", domain.Asset))
	})
	require.NoError(t, err)

	acc, err := repo.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "1000", acc.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
