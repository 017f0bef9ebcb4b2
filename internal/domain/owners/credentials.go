package owners

import (
	"context"
	"errors"
	"unicode"

	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/registry"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles carried in access tokens.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func checkCredentials(password, role string) error {
	var failures errs.ValidationErrors
	if !isPasswordStrong(password) {
		failures = append(failures, errs.Invalid("password", "must be at least 8 characters with letters and numbers"))
	}
	if role != "" && role != RoleAdmin && role != RoleEditor {
		failures = append(failures, errs.Invalid("role", "unknown role %q", role))
	}
	if len(failures) > 0 {
		return failures
	}
	return nil
}

func setCredentials(tx *gorm.DB, userID uint, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	updates := map[string]any{"password": string(hashed)}
	if role != "" {
		updates["role"] = role
	}
	res := tx.Model(&User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("User", userID)
	}
	return nil
}

// SetCredentials sets the password and role of a user. An empty role keeps
// the current one.
func (s *Service) SetCredentials(ctx context.Context, userID uint, password, role string) error {
	if err := checkCredentials(password, role); err != nil {
		return err
	}
	return setCredentials(s.db.WithContext(ctx), userID, password, role)
}

// CreateUser inserts a user row and its credentials together. Nothing is
// written when either the row or the credentials are invalid.
func (s *Service) CreateUser(ctx context.Context, values map[string]any, password, role string) (*User, error) {
	d, err := s.reg.Resolve(catalog.User)
	if err != nil {
		return nil, err
	}
	clean, err := registry.ValidateRecord(d, values)
	if err != nil {
		return nil, err
	}
	if err := checkCredentials(password, role); err != nil {
		return nil, err
	}
	var u User
	if err := fill(&u, clean); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insert(tx, d, &u, clean); err != nil {
			return err
		}
		return setCredentials(tx, u.ID, password, role)
	})
	if err != nil {
		return nil, err
	}
	return s.loadUser(ctx, u.ID)
}

func (s *Service) loadUser(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("User", id)
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Password == nil || *u.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.Authenticate(ctx, u.Username, oldPassword); err != nil {
		return err
	}
	return s.SetCredentials(ctx, userID, newPassword, "")
}
