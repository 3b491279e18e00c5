package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// FollowService handles the subscribe/unsubscribe toggle and the
// subscription listing.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Subscribe makes userID follow authorID. Following yourself or someone you
// already follow is rejected.
func (s *FollowService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	if userID == authorID {
		return nil, validationErr("author", "you cannot follow yourself")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("author", "you are already following this user")
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueViolation(err) {
			// Unique index caught a concurrent duplicate subscribe.
			return nil, validationErr("author", "you are already following this user")
		}
		return nil, err
	}
	return &author, nil
}

func (s *FollowService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return validationErr("author", "you are not following this user")
	}
	return nil
}

// Subscriptions returns a page of the authors userID follows, plus the total.
func (s *FollowService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	followed := s.db.Table("follows").
		Select("author_id").
		Where("user_id = ?", userID)

	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", followed)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("username")
	if limit > 0 {
		query = query.Limit(limit).Offset((page - 1) * limit)
	}

	var authors []models.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// IsSubscribed reports which of the given authors the viewer follows.
func (s *FollowService) IsSubscribed(ctx context.Context, viewerID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}
