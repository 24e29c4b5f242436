package services

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
)

type readinessService struct {
	checker portsrepo.HealthChecker
}

// NewReadinessService reports readiness through the store's ping.
func NewReadinessService(checker portsrepo.HealthChecker) portssvc.ReadinessSvc {
	return &readinessService{checker: checker}
}

func (s *readinessService) Ready(ctx context.Context) error {
	if s.checker == nil {
		return nil
	}
	if err := s.checker.Ping(ctx); err != nil {
		return fmt.Errorf("storage not reachable: %w", err)
	}
	return nil
}
