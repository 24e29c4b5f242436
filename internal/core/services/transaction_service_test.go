package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
	tx portsrepo.LedgerTx
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.tx)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionsByReference(ctx context.Context, referenceID string, txnType string) ([]domain.Transaction, error) {
	args := m.Called(ctx, referenceID, txnType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListEntriesByAccount(ctx context.Context, accountID string, userID *string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), returnedNextToken, args.Error(2)
}

// --- Mock LedgerTx ---
type MockLedgerTx struct {
	mock.Mock
}

var _ portsrepo.LedgerTx = (*MockLedgerTx)(nil)

func (m *MockLedgerTx) FindAccountsByIDsForShare(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockLedgerTx) SaveAccountInTx(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockLedgerTx) DeactivateAccountInTx(ctx context.Context, accountID string, userID string, now time.Time) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockLedgerTx) InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockLedgerTx) ApplyBalanceDelta(ctx context.Context, delta domain.BalanceDelta, now time.Time) (domain.BalanceChange, error) {
	args := m.Called(ctx, delta, now)
	return args.Get(0).(domain.BalanceChange), args.Error(1)
}

func (m *MockLedgerTx) LockBalance(ctx context.Context, key domain.BalanceKey, now time.Time) (domain.AccountBalance, error) {
	args := m.Called(ctx, key, now)
	return args.Get(0).(domain.AccountBalance), args.Error(1)
}

func (m *MockLedgerTx) SumEntriesByKey(ctx context.Context, key domain.BalanceKey) (decimal.Decimal, decimal.Decimal, int, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Int(2), args.Error(3)
}

func (m *MockLedgerTx) ReplaceBalance(ctx context.Context, key domain.BalanceKey, debit, credit decimal.Decimal, now time.Time) (domain.AccountBalance, error) {
	args := m.Called(ctx, key, debit, credit, now)
	return args.Get(0).(domain.AccountBalance), args.Error(1)
}

func (m *MockLedgerTx) AppendAudit(ctx context.Context, entry domain.AuditTrailEntry) error {
	return m.Called(ctx, entry).Error(0)
}

// --- Mock BalanceMaintainer ---
type MockBalanceService struct {
	mock.Mock
}

var _ portssvc.BalanceMaintainerSvc = (*MockBalanceService)(nil)

func (m *MockBalanceService) ApplyDelta(ctx context.Context, tx portsrepo.LedgerTx, delta domain.BalanceDelta, actorID string) (domain.AccountBalance, error) {
	args := m.Called(ctx, tx, delta, actorID)
	return args.Get(0).(domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceService) GetBalance(ctx context.Context, accountID string, userID *string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceService) ReconcileBalance(ctx context.Context, accountID string, userID *string, actorID string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, accountID, userID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

// --- Mock AuditRecorder ---
type MockAuditService struct {
	mock.Mock
}

var _ portssvc.AuditRecorderSvc = (*MockAuditService)(nil)

func (m *MockAuditService) Append(ctx context.Context, w portsrepo.AuditWriter, tableName, recordID string, userID *string, oldValues, newValues any) error {
	return m.Called(ctx, w, tableName, recordID, userID, oldValues, newValues).Error(0)
}

func (m *MockAuditService) Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTrailEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditTrailEntry), args.Error(1)
}

func (m *MockAuditService) Verify(ctx context.Context, page, limit int) (*domain.AuditVerification, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditVerification), args.Error(1)
}

// --- Mock AccountReader ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountReaderSvc = (*MockAccountService)(nil)

func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Test Suite Setup ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockTransactionRepository
	mockTx         *MockLedgerTx
	mockBalanceSvc *MockBalanceService
	mockAuditSvc   *MockAuditService
	mockAccountSvc *MockAccountService
	service        portssvc.TransactionSvcFacade
	now            time.Time
	actorID        string

	cashAccount    domain.Account
	revenueAccount domain.Account
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTx = new(MockLedgerTx)
	suite.mockRepo = &MockTransactionRepository{tx: suite.mockTx}
	suite.mockBalanceSvc = new(MockBalanceService)
	suite.mockAuditSvc = new(MockAuditService)
	suite.mockAccountSvc = new(MockAccountService)
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewTransactionService(
		suite.mockRepo, suite.mockAccountSvc, suite.mockBalanceSvc, suite.mockAuditSvc,
		services.WithClock(func() time.Time { return suite.now }),
	)
	suite.actorID = uuid.NewString()

	suite.cashAccount = domain.Account{AccountID: "a-cash", Code: "1000", AccountType: domain.Asset, IsActive: true}
	suite.revenueAccount = domain.Account{AccountID: "b-revenue", Code: "4000", AccountType: domain.Revenue, IsActive: true}
}

func (suite *TransactionServiceTestSuite) request(debit, credit string) domain.TransactionRequest {
	return domain.TransactionRequest{
		Description: "comic purchase",
		Type:        "purchase",
		Entries: []domain.EntryRequest{
			{AccountID: suite.revenueAccount.AccountID, DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString(credit)},
			{AccountID: suite.cashAccount.AccountID, DebitAmount: decimal.RequireFromString(debit), CreditAmount: decimal.Zero},
		},
	}
}

func (suite *TransactionServiceTestSuite) accounts() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	ids := []string{suite.cashAccount.AccountID, suite.revenueAccount.AccountID}

	suite.mockRepo.On("RunInTx", ctx).Return(nil).Once()
	suite.mockTx.On("FindAccountsByIDsForShare", ctx, ids).Return(suite.accounts(), nil).Once()
	suite.mockTx.On("InsertTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.TotalAmount.Equal(decimal.NewFromInt(10)) && t.CreatedBy == suite.actorID && t.TransactionDate.Equal(suite.now)
	})).Return(nil).Once()
	suite.mockTx.On("InsertEntries", ctx, mock.AnythingOfType("[]domain.LedgerEntry")).Return(nil).Once()

	// Deltas must arrive in key order: a-cash before b-revenue.
	var applied []string
	suite.mockBalanceSvc.On("ApplyDelta", ctx, suite.mockTx, mock.AnythingOfType("domain.BalanceDelta"), suite.actorID).
		Run(func(args mock.Arguments) {
			applied = append(applied, args.Get(2).(domain.BalanceDelta).Key.AccountID)
		}).
		Return(domain.AccountBalance{}, nil).Twice()
	suite.mockAuditSvc.On("Append", ctx, suite.mockTx, domain.AuditTableTransactions, mock.AnythingOfType("string"), &suite.actorID, nil, mock.Anything).Return(nil).Once()

	posted, err := suite.service.CreateTransaction(ctx, suite.request("10", "10"), suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal([]string{suite.cashAccount.AccountID, suite.revenueAccount.AccountID}, applied)
	suite.Equal(1, posted.Entries[0].LineNo)
	suite.Equal(suite.revenueAccount.AccountID, posted.Entries[0].AccountID, "entries keep submission order")
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockTx.AssertExpectations(suite.T())
	suite.mockBalanceSvc.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ValidationHappensBeforeAnyWrite() {
	ctx := context.Background()
	cases := map[string]domain.TransactionRequest{
		"unbalanced":     suite.request("10", "9.99"),
		"single entry":   {Description: "x", Type: "y", Entries: suite.request("1", "1").Entries[:1]},
		"no description": {Type: "y", Entries: suite.request("1", "1").Entries},
		"zero line": {Description: "x", Type: "y", Entries: []domain.EntryRequest{
			{AccountID: "a", DebitAmount: decimal.Zero, CreditAmount: decimal.Zero},
			{AccountID: "b", DebitAmount: decimal.Zero, CreditAmount: decimal.Zero},
		}},
		"negative": {Description: "x", Type: "y", Entries: []domain.EntryRequest{
			{AccountID: "a", DebitAmount: decimal.NewFromInt(-1), CreditAmount: decimal.Zero},
			{AccountID: "b", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(-1)},
		}},
		"nine decimals": {Description: "x", Type: "y", Entries: []domain.EntryRequest{
			{AccountID: "a", DebitAmount: decimal.RequireFromString("0.000000001"), CreditAmount: decimal.Zero},
			{AccountID: "b", DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString("0.000000001")},
		}},
	}

	for name, req := range cases {
		suite.Run(name, func() {
			_, err := suite.service.CreateTransaction(ctx, req, suite.actorID)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "RunInTx", mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_UnbalancedCarriesTotals() {
	_, err := suite.service.CreateTransaction(context.Background(), suite.request("10", "9.99"), suite.actorID)

	var unbalanced *apperrors.UnbalancedEntriesError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.Equal("10.00000000", unbalanced.TotalDebits.StringFixed(8))
	suite.Equal("9.99000000", unbalanced.TotalCredits.StringFixed(8))
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_PersistenceFailureIsRetryable() {
	ctx := context.Background()
	dbErr := apperrors.NewPersistenceError("balance upsert failed", errors.New("connection reset"))

	suite.mockRepo.On("RunInTx", ctx).Return(nil).Once()
	suite.mockTx.On("FindAccountsByIDsForShare", ctx, mock.Anything).Return(suite.accounts(), nil).Once()
	suite.mockTx.On("InsertTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockTx.On("InsertEntries", ctx, mock.Anything).Return(nil).Once()
	suite.mockBalanceSvc.On("ApplyDelta", ctx, suite.mockTx, mock.Anything, suite.actorID).Return(domain.AccountBalance{}, dbErr).Once()

	_, err := suite.service.CreateTransaction(ctx, suite.request("5", "5"), suite.actorID)

	suite.Require().Error(err)
	suite.True(apperrors.IsRetryable(err))
	suite.mockAuditSvc.AssertNotCalled(suite.T(), "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.accounts()
	rev := inactive[suite.revenueAccount.AccountID]
	rev.IsActive = false
	inactive[rev.AccountID] = rev

	suite.mockRepo.On("RunInTx", ctx).Return(nil).Once()
	suite.mockTx.On("FindAccountsByIDsForShare", ctx, mock.Anything).Return(inactive, nil).Once()

	_, err := suite.service.CreateTransaction(ctx, suite.request("5", "5"), suite.actorID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTx.AssertNotCalled(suite.T(), "InsertTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestListAccountEntries_ClampsLimit() {
	ctx := context.Background()
	suite.mockAccountSvc.On("GetAccountByID", ctx, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockRepo.On("ListEntriesByAccount", ctx, suite.cashAccount.AccountID, (*string)(nil), 500, (*string)(nil)).
		Return([]domain.LedgerEntry{}, "next", nil).Once()

	entries, next, err := suite.service.ListAccountEntries(ctx, suite.cashAccount.AccountID, nil, 10000, nil)

	suite.Require().NoError(err)
	suite.Empty(entries)
	suite.Require().NotNil(next)
	suite.Equal("next", *next)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestGetTransaction_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindTransactionByID", ctx, "missing").Return(nil, apperrors.NewNotFoundError("transaction missing")).Once()

	_, err := suite.service.GetTransaction(ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
