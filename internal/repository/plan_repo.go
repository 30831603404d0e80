package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// PlanRepository provides access to study plans and per-user progress.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *models.StudyPlan) error
	GetPlan(ctx context.Context, id uint) (models.StudyPlan, error)
	ListPlans(ctx context.Context, limit, offset int) ([]models.StudyPlan, error)
	GetProgress(ctx context.Context, planID, userID uint) (models.PlanProgress, error)
	CreateProgress(ctx context.Context, progress *models.PlanProgress) error
	UpdateProgress(ctx context.Context, progress *models.PlanProgress) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository constructs a study plan repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// CreatePlan stores the plan with its ordered days; DayCount is derived.
func (r *planRepository) CreatePlan(ctx context.Context, plan *models.StudyPlan) error {
	plan.DayCount = len(plan.Days)
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) GetPlan(ctx context.Context, id uint) (models.StudyPlan, error) {
	var plan models.StudyPlan
	err := r.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		First(&plan, id).Error
	if err != nil {
		return models.StudyPlan{}, err
	}

	return plan, nil
}

func (r *planRepository) ListPlans(ctx context.Context, limit, offset int) ([]models.StudyPlan, error) {
	if limit <= 0 {
		limit = 20
	}

	var plans []models.StudyPlan
	err := r.db.WithContext(ctx).
		Order("subscriber_count desc, id asc").
		Limit(limit).
		Offset(offset).
		Find(&plans).Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepository) GetProgress(ctx context.Context, planID, userID uint) (models.PlanProgress, error) {
	var progress models.PlanProgress
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		First(&progress).Error
	if err != nil {
		return models.PlanProgress{}, err
	}

	return progress, nil
}

// CreateProgress records a subscription and bumps the plan subscriber count.
func (r *planRepository) CreateProgress(ctx context.Context, progress *models.PlanProgress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(progress).Error; err != nil {
			return err
		}

		return tx.Model(&models.StudyPlan{}).
			Where("id = ?", progress.PlanID).
			Update("subscriber_count", gorm.Expr("subscriber_count + 1")).Error
	})
}

func (r *planRepository) UpdateProgress(ctx context.Context, progress *models.PlanProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}
