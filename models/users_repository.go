package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Login checks the credentials and returns the account's token, minting it on
// first use. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (r *UsersRepository) Login(username, password string) (*Token, error) {
	var user User
	err := r.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return r.tokenFor(user.ID)
}

func (r *UsersRepository) tokenFor(userID uint) (*Token, error) {
	token := Token{Key: newTokenKey(), UserID: userID}
	if err := r.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&token).Error; err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	// A concurrent or earlier login may already own the row.
	var stored Token
	if err := r.db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &stored, nil
}

// UserForToken resolves an API key to its active account.
func (r *UsersRepository) UserForToken(key string) (*User, error) {
	var token Token
	err := r.db.Preload("User").Where("token_key = ?", key).First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	if !token.User.IsActive {
		return nil, ErrNotFound
	}
	return &token.User, nil
}

// SaveUser creates the account or resets its password. Resetting a password
// revokes the existing token.
func (r *UsersRepository) SaveUser(username, password string) (*User, error) {
	if username == "" {
		return nil, NewValidationError("username", msgNotBlank)
	}
	var user User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user.Username = username
		user.IsActive = true
		if err := user.SetPassword(password); err != nil {
			return NewValidationError("password", err.Error())
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&Token{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
