package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"portfolio-tracker/internal/models"
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a new user together with a default portfolio.
func (s *AuthService) Register(user *models.User) error {
	var existing models.User
	err := s.db.Where("username = ? OR email = ?", user.Username, user.Email).
		First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: username or email taken", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := user.HashPassword(); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		portfolio := models.Portfolio{Name: "My Portfolio", UserID: user.ID}
		return tx.Create(&portfolio).Error
	})
}

// Login authenticates a user by username and password.
func (s *AuthService) Login(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrUnauthorized
	}

	user.Password = ""
	return &user, nil
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}
