package services

import (
	"context"
	"errors"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileInput struct {
	Name               string   `json:"name"`
	Habits             []string `json:"habits"`
	Conditions         []string `json:"conditions"`
	Allergies          []string `json:"allergies"`
	ProfileImageBase64 []byte   `json:"-"`
	ProfileImageType   string   `json:"-"`
}

type UserService struct {
	db     *gorm.DB
	images ImageStorage
}

func NewUserService(db *gorm.DB, images ImageStorage) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) Get(userID string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if input.Name != "" {
		patch["name"] = input.Name
	}
	if input.Habits != nil {
		patch["habits"] = datatypes.NewJSONSlice(input.Habits)
	}
	if input.Conditions != nil {
		patch["conditions"] = datatypes.NewJSONSlice(input.Conditions)
	}
	if input.Allergies != nil {
		patch["allergies"] = datatypes.NewJSONSlice(input.Allergies)
	}
	if len(input.ProfileImageBase64) > 0 {
		url, err := s.images.Upload(ctx, input.ProfileImageBase64, input.ProfileImageType, "profiles/"+user.ID)
		if err != nil {
			return nil, err
		}
		patch["profile_image_url"] = url
	}

	if len(patch) > 0 {
		if err := s.db.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(patch).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// SoftDelete hides the account; scans and daily scores cascade logically via
// the same soft-delete scope on their own queries.
func (s *UserService) SoftDelete(userID string) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}
	return s.db.Delete(&models.User{}, "id = ?", userID).Error
}
