package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// Transaction types recorded in the ledger.
const (
	TransactionDonation     = "donation"
	TransactionPromotion    = "promotion"
	TransactionSubscription = "subscription"
)

// TransactionService appends to and reads the donation/promotion ledger.
// Entries are immutable once recorded.
type TransactionService struct {
	transactions repository.TransactionRepository
	sessions     *session.Manager
	logger       zerolog.Logger
}

// NewTransactionService constructs a transaction service.
func NewTransactionService(transactions repository.TransactionRepository, sessions *session.Manager, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		sessions:     sessions,
		logger:       logger.With().Str("component", "transaction_service").Logger(),
	}
}

// Record appends one ledger entry for the session user.
func (s *TransactionService) Record(ctx context.Context, kind string, amountCents int64, communityID *uint) (models.Transaction, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Transaction{}, ErrNotLoggedIn
	}

	switch kind {
	case TransactionDonation, TransactionPromotion, TransactionSubscription:
	default:
		return models.Transaction{}, fmt.Errorf("unknown transaction type: %q", kind)
	}

	if amountCents <= 0 {
		return models.Transaction{}, fmt.Errorf("amount must be positive")
	}

	transaction := models.Transaction{
		UserID:      current.UserID,
		Type:        kind,
		AmountCents: amountCents,
		Status:      "completed",
		CommunityID: communityID,
	}

	if err := s.transactions.Create(ctx, &transaction); err != nil {
		return models.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	s.logger.Info().Str("type", kind).Int64("amount_cents", amountCents).Msg("transaction recorded")

	return transaction, nil
}

// History lists the session user's ledger entries, newest first.
func (s *TransactionService) History(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	current := s.sessions.Current()
	if current == nil {
		return nil, nil
	}

	return s.transactions.ListByUser(ctx, current.UserID, limit, offset)
}
