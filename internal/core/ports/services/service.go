package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Balance     BalanceMaintainerSvc
	Reporting   ReportingService
	Audit       AuditRecorderSvc
	Health      ReadinessSvc
}

// ReadinessSvc reports whether the service can reach its storage.
type ReadinessSvc interface {
	Ready(ctx context.Context) error
}
