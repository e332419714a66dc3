package stock

import (
	"context"
	"log/slog"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/mirror"
)

// Service exposes derived stock levels over the synced transaction list.
type Service struct {
	transactions mirror.View[inventory.Transaction]
	logger       *slog.Logger
}

// NewService builds the Service.
func NewService(transactions mirror.View[inventory.Transaction], logger *slog.Logger) *Service {
	return &Service{transactions: transactions, logger: logger}
}

// Levels recomputes levels from the current snapshot.
func (s *Service) Levels(ctx context.Context) Levels {
	return Aggregate(s.transactions.Items(), s.logger)
}
