package services

import (
	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: every writer appends through it.
	container.Audit = NewAuditService(repos.AuditRepo, options...)
	container.Account = NewAccountService(repos.AccountRepo, container.Audit, options...)
	container.Balance = NewBalanceService(repos.BalanceRepo, repos.AccountRepo, container.Audit, options...)
	container.Transaction = NewTransactionService(repos.TransactionRepo, container.Account, container.Balance, container.Audit, options...)
	container.Reporting = NewReportingService(repos.ReportingRepo, options...)
	container.Health = NewReadinessService(repos.Health)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.BalanceMaintainerSvc = (*balanceService)(nil)
	_ portssvc.ReportingService     = (*reportingService)(nil)
	_ portssvc.AuditRecorderSvc     = (*auditService)(nil)
)
