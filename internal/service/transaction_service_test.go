package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/repository"
)

func newTransactions(f *fixture) *TransactionService {
	return NewTransactionService(repository.NewTransactionRepository(f.db), f.sessions, testLogger())
}

func TestTransactionRecordAndHistory(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	transactions := newTransactions(f)

	first, err := transactions.Record(context.Background(), TransactionDonation, 2500, nil)
	require.NoError(t, err)
	require.Equal(t, "completed", first.Status)
	require.Equal(t, int64(2500), first.AmountCents)

	_, err = transactions.Record(context.Background(), TransactionSubscription, 990, nil)
	require.NoError(t, err)

	history, err := transactions.History(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// newest first
	require.Equal(t, TransactionSubscription, history[0].Type)
}

func TestTransactionRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	transactions := newTransactions(f)

	_, err := transactions.Record(context.Background(), "reembolso", 100, nil)
	require.Error(t, err)

	_, err = transactions.Record(context.Background(), TransactionDonation, 0, nil)
	require.Error(t, err)

	_, err = transactions.Record(context.Background(), TransactionDonation, -10, nil)
	require.Error(t, err)
}

func TestTransactionRequiresSession(t *testing.T) {
	f := newFixture(t)

	transactions := newTransactions(f)
	_, err := transactions.Record(context.Background(), TransactionDonation, 100, nil)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}
