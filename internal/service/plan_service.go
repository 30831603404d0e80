package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// PlanService owns devotional study plans and per-user progress. Progress
// rows are created on subscribe and mutated on day completion, never
// deleted.
type PlanService struct {
	plans    repository.PlanRepository
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewPlanService constructs a study plan service.
func NewPlanService(plans repository.PlanRepository, sessions *session.Manager, logger zerolog.Logger) *PlanService {
	return &PlanService{
		plans:    plans,
		sessions: sessions,
		logger:   logger.With().Str("component", "plan_service").Logger(),
	}
}

// Create stores a plan authored by the session user.
func (s *PlanService) Create(ctx context.Context, plan models.StudyPlan) (models.StudyPlan, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.StudyPlan{}, ErrNotLoggedIn
	}

	if plan.Title == "" || len(plan.Days) == 0 {
		return models.StudyPlan{}, ErrEmptyContent
	}

	plan.AuthorID = current.UserID
	for i := range plan.Days {
		plan.Days[i].Number = i + 1
	}

	if err := s.plans.CreatePlan(ctx, &plan); err != nil {
		return models.StudyPlan{}, fmt.Errorf("create plan: %w", err)
	}

	return plan, nil
}

// Get resolves one plan with its ordered days.
func (s *PlanService) Get(ctx context.Context, id uint) (models.StudyPlan, error) {
	plan, err := s.plans.GetPlan(ctx, id)
	if err != nil {
		return models.StudyPlan{}, mapNotFound(err)
	}

	return plan, nil
}

// List returns plans by subscriber count.
func (s *PlanService) List(ctx context.Context, limit, offset int) ([]models.StudyPlan, error) {
	return s.plans.ListPlans(ctx, limit, offset)
}

// Subscribe creates the user's progress row and bumps the subscriber count.
// Subscribing twice is a no-op returning the existing progress.
func (s *PlanService) Subscribe(ctx context.Context, planID uint) (models.PlanProgress, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.PlanProgress{}, ErrNotLoggedIn
	}

	existing, err := s.plans.GetProgress(ctx, planID, current.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PlanProgress{}, err
	}

	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		return models.PlanProgress{}, mapNotFound(err)
	}

	progress := models.PlanProgress{
		PlanID:        planID,
		UserID:        current.UserID,
		CompletedDays: datatypes.NewJSONSlice([]int{}),
	}

	if err := s.plans.CreateProgress(ctx, &progress); err != nil {
		return models.PlanProgress{}, fmt.Errorf("subscribe plan: %w", err)
	}

	return progress, nil
}

// CompleteDay marks one day done, idempotently, and flips the completion
// flag when every day is finished.
func (s *PlanService) CompleteDay(ctx context.Context, planID uint, day int) (models.PlanProgress, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.PlanProgress{}, ErrNotLoggedIn
	}

	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return models.PlanProgress{}, mapNotFound(err)
	}

	if day < 1 || day > plan.DayCount {
		return models.PlanProgress{}, fmt.Errorf("day %d is out of range", day)
	}

	progress, err := s.plans.GetProgress(ctx, planID, current.UserID)
	if err != nil {
		return models.PlanProgress{}, mapNotFound(err)
	}

	completed := []int(progress.CompletedDays)
	for _, done := range completed {
		if done == day {
			return progress, nil
		}
	}

	completed = append(completed, day)
	sort.Ints(completed)
	progress.CompletedDays = datatypes.NewJSONSlice(completed)
	progress.Completed = len(completed) >= plan.DayCount

	if err := s.plans.UpdateProgress(ctx, &progress); err != nil {
		return models.PlanProgress{}, fmt.Errorf("complete day: %w", err)
	}

	return progress, nil
}

// ToggleReminder flips the daily reminder preference.
func (s *PlanService) ToggleReminder(ctx context.Context, planID uint) (models.PlanProgress, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.PlanProgress{}, ErrNotLoggedIn
	}

	progress, err := s.plans.GetProgress(ctx, planID, current.UserID)
	if err != nil {
		return models.PlanProgress{}, mapNotFound(err)
	}

	progress.Reminder = !progress.Reminder
	if err := s.plans.UpdateProgress(ctx, &progress); err != nil {
		return models.PlanProgress{}, err
	}

	return progress, nil
}
