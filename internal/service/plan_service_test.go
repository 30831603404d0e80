package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
)

func newPlans(f *fixture) *PlanService {
	return NewPlanService(repository.NewPlanRepository(f.db), f.sessions, testLogger())
}

func threeDayPlan() models.StudyPlan {
	return models.StudyPlan{
		Title:       "Salmos em 3 dias",
		Description: "Uma introdução aos Salmos",
		Days: []models.PlanDay{
			{Title: "Dia um", Reference: "Salmos 1"},
			{Title: "Dia dois", Reference: "Salmos 23"},
			{Title: "Dia três", Reference: "Salmos 91"},
		},
	}
}

func TestPlanCreateNumbersDays(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	plans := newPlans(f)
	plan, err := plans.Create(context.Background(), threeDayPlan())
	require.NoError(t, err)
	require.Equal(t, 3, plan.DayCount)

	stored, err := plans.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Len(t, stored.Days, 3)
	require.Equal(t, 1, stored.Days[0].Number)
	require.Equal(t, 3, stored.Days[2].Number)
}

func TestPlanSubscribeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	plans := newPlans(f)
	plan, err := plans.Create(context.Background(), threeDayPlan())
	require.NoError(t, err)

	first, err := plans.Subscribe(context.Background(), plan.ID)
	require.NoError(t, err)

	second, err := plans.Subscribe(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	stored, err := plans.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.SubscriberCount)
}

func TestPlanCompleteDay(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	plans := newPlans(f)
	plan, err := plans.Create(context.Background(), threeDayPlan())
	require.NoError(t, err)

	_, err = plans.Subscribe(context.Background(), plan.ID)
	require.NoError(t, err)

	progress, err := plans.CompleteDay(context.Background(), plan.ID, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2}, []int(progress.CompletedDays))
	require.False(t, progress.Completed)

	// completing the same day again changes nothing
	progress, err = plans.CompleteDay(context.Background(), plan.ID, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2}, []int(progress.CompletedDays))

	_, err = plans.CompleteDay(context.Background(), plan.ID, 1)
	require.NoError(t, err)
	progress, err = plans.CompleteDay(context.Background(), plan.ID, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, []int(progress.CompletedDays))
	require.True(t, progress.Completed)
}

func TestPlanCompleteDayOutOfRange(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	plans := newPlans(f)
	plan, err := plans.Create(context.Background(), threeDayPlan())
	require.NoError(t, err)

	_, err = plans.Subscribe(context.Background(), plan.ID)
	require.NoError(t, err)

	_, err = plans.CompleteDay(context.Background(), plan.ID, 4)
	require.Error(t, err)
	_, err = plans.CompleteDay(context.Background(), plan.ID, 0)
	require.Error(t, err)
}

func TestPlanToggleReminder(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	plans := newPlans(f)
	plan, err := plans.Create(context.Background(), threeDayPlan())
	require.NoError(t, err)

	_, err = plans.Subscribe(context.Background(), plan.ID)
	require.NoError(t, err)

	progress, err := plans.ToggleReminder(context.Background(), plan.ID)
	require.NoError(t, err)
	require.True(t, progress.Reminder)

	progress, err = plans.ToggleReminder(context.Background(), plan.ID)
	require.NoError(t, err)
	require.False(t, progress.Reminder)
}
