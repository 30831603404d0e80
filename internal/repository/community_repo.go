package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// CommunityRepository provides access to communities, membership and events.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (models.Community, error)
	List(ctx context.Context, limit, offset int) ([]models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	MemberExists(ctx context.Context, communityID, userID uint) (bool, error)
	AddMember(ctx context.Context, communityID, userID uint) error
	RemoveMember(ctx context.Context, communityID, userID uint) error
	CreateEvent(ctx context.Context, event *models.Event) error
	RSVPExists(ctx context.Context, eventID, userID uint) (bool, error)
	AddRSVP(ctx context.Context, eventID, userID uint) error
	RemoveRSVP(ctx context.Context, eventID, userID uint) error
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository constructs a community repository.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// Create stores the community and enrols its creator as the first member.
func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community.MemberCount = 1
		if err := tx.Create(community).Error; err != nil {
			return err
		}

		member := models.CommunityMember{CommunityID: community.ID, UserID: community.AdminID}
		return tx.Create(&member).Error
	})
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Preload("Events").First(&community, id).Error; err != nil {
		return models.Community{}, err
	}

	return community, nil
}

func (r *communityRepository) List(ctx context.Context, limit, offset int) ([]models.Community, error) {
	if limit <= 0 {
		limit = 20
	}

	var communities []models.Community
	err := r.db.WithContext(ctx).
		Order("promoted desc, member_count desc, id asc").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	if err != nil {
		return nil, err
	}

	return communities, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Save(community).Error
}

func (r *communityRepository) MemberExists(ctx context.Context, communityID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *communityRepository) AddMember(ctx context.Context, communityID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := models.CommunityMember{CommunityID: communityID, UserID: userID}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", gorm.Expr("member_count + 1")).Error
	})
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.CommunityMember{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.Community{}).
			Where("id = ?", communityID).
			Update("member_count", gorm.Expr("member_count - 1")).Error
	})
}

func (r *communityRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *communityRepository) RSVPExists(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventRSVP{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *communityRepository) AddRSVP(ctx context.Context, eventID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rsvp := models.EventRSVP{EventID: eventID, UserID: userID}
		if err := tx.Create(&rsvp).Error; err != nil {
			return err
		}

		return tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			Update("attendee_count", gorm.Expr("attendee_count + 1")).Error
	})
}

func (r *communityRepository) RemoveRSVP(ctx context.Context, eventID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventRSVP{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			Update("attendee_count", gorm.Expr("attendee_count - 1")).Error
	})
}
