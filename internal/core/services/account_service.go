package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/dto"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	auditSvc    portssvc.AuditRecorderSvc
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, auditSvc portssvc.AuditRecorderSvc, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options),
		accountRepo: repo,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown account type %q", *filter.Type)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("account code and name are required")
	}
	if !req.AccountType.Valid() {
		return nil, apperrors.NewValidationError("unknown account type %q", req.AccountType)
	}
	normal := domain.DefaultNormalBalance(req.AccountType)
	if req.NormalBalance != nil {
		if *req.NormalBalance != domain.NormalDebit && *req.NormalBalance != domain.NormalCredit {
			return nil, apperrors.NewValidationError("unknown normal balance %q", *req.NormalBalance)
		}
		normal = *req.NormalBalance
	}

	now := s.Now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		Code:          code,
		Name:          name,
		AccountType:   req.AccountType,
		NormalBalance: normal,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	err := s.accountRepo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.SaveAccountInTx(ctx, account); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, tx, domain.AuditTableAccounts, account.AccountID, auditActor(actorID, nil), nil, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actorID string) error {
	err := s.accountRepo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		now := s.Now()
		prev, err := tx.DeactivateAccountInTx(ctx, accountID, actorID, now)
		if err != nil {
			return err
		}
		if !prev.IsActive {
			return nil
		}
		updated := *prev
		updated.IsActive = false
		updated.LastUpdatedAt = now
		updated.LastUpdatedBy = actorID
		return s.auditSvc.Append(ctx, tx, domain.AuditTableAccounts, accountID, auditActor(actorID, nil), prev, updated)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
