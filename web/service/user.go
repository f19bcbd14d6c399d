package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dailydiet/daily-diet/database"
	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/util/crypto"

	"gorm.io/gorm"
)

const maxUserNameLen = 80

// UserService registers and authenticates users and applies the user
// visibility rules.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func validateCredentials(userName, password string) error {
	if userName == "" {
		return invalidInput("user_name invalid")
	}
	if password == "" {
		return invalidInput("password invalid")
	}
	if utf8.RuneCountInString(userName) > maxUserNameLen {
		return invalidInput("user_name must be at most %d characters", maxUserNameLen)
	}
	if len(password) > crypto.MaxPasswordBytes {
		return invalidInput("password must be at most %d bytes", crypto.MaxPasswordBytes)
	}
	return nil
}

// Register creates a user with the "user" role.
func (s *UserService) Register(ctx context.Context, userName, password string) (*model.User, error) {
	userName = strings.TrimSpace(userName)
	password = strings.TrimSpace(password)
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	u := &model.User{
		UserName: userName,
		Password: hash,
		Role:     model.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, conflict("user_name already exists")
		}
		return nil, internal("create user", err)
	}
	return u, nil
}

// CheckUser verifies a login. Unknown user names and wrong passwords return
// the same ErrInvalidCredentials.
func (s *UserService) CheckUser(ctx context.Context, userName, password string) (*model.User, error) {
	userName = strings.TrimSpace(userName)
	password = strings.TrimSpace(password)

	u := &model.User{}
	err := s.db.WithContext(ctx).
		Where("user_name = ?", userName).
		First(u).
		Error
	if database.IsNotFound(err) {
		if err := crypto.BurnPasswordCheck(password); err != nil {
			return nil, internal("check user", err)
		}
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, internal("check user", err)
	}

	if !crypto.CheckPasswordHash(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Principal resolves the user id stored in a session. A user that no longer
// exists yields ErrUnauthenticated.
func (s *UserService) Principal(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := s.db.WithContext(ctx).First(u, id).Error
	if database.IsNotFound(err) {
		return nil, ErrUnauthenticated
	} else if err != nil {
		return nil, internal("load principal", err)
	}
	return u, nil
}

// GetUser returns a user visible to principal: themselves, or anyone when the
// principal holds a role other than "user".
func (s *UserService) GetUser(ctx context.Context, principal *model.User, id int) (*model.User, error) {
	if principal.Id != id && principal.Role == model.RoleUser {
		return nil, forbidden("not allowed to view this user")
	}
	u := &model.User{}
	err := s.db.WithContext(ctx).First(u, id).Error
	if database.IsNotFound(err) {
		return nil, notFound("user")
	} else if err != nil {
		return nil, internal("get user", err)
	}
	return u, nil
}

// ListUsers returns every user ordered by id. Admin only.
func (s *UserService) ListUsers(ctx context.Context, principal *model.User) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, forbidden("admin role required")
	}
	users := make([]model.User, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}

// DeleteUser removes a user and all of their meals in one transaction. Only
// admins may delete, and never the account they are logged in with.
func (s *UserService) DeleteUser(ctx context.Context, principal *model.User, id int) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, forbidden("admin role required")
	}
	if principal.Id == id {
		return nil, forbidden("cannot delete the account you are logged in with")
	}

	u := &model.User{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(u, id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Meal{}).Error; err != nil {
			return err
		}
		return tx.Delete(u).Error
	})
	if database.IsNotFound(err) {
		return nil, notFound("user")
	} else if err != nil {
		return nil, internal("delete user", err)
	}
	return u, nil
}

// EnsureAdmin creates userName as an admin, or promotes the existing account.
// A non-empty password replaces the stored one; creating requires it.
func (s *UserService) EnsureAdmin(ctx context.Context, userName, password string) (*model.User, bool, error) {
	userName = strings.TrimSpace(userName)
	password = strings.TrimSpace(password)
	if userName == "" {
		return nil, false, invalidInput("user_name invalid")
	}

	db := s.db.WithContext(ctx)
	u := &model.User{}
	err := db.Where("user_name = ?", userName).First(u).Error
	if database.IsNotFound(err) {
		if err := validateCredentials(userName, password); err != nil {
			return nil, false, err
		}
		hash, err := crypto.HashPasswordAsBcrypt(password)
		if err != nil {
			return nil, false, internal("hash password", err)
		}
		u = &model.User{UserName: userName, Password: hash, Role: model.RoleAdmin}
		if err := db.Create(u).Error; err != nil {
			return nil, false, internal("create admin", err)
		}
		return u, true, nil
	} else if err != nil {
		return nil, false, internal("find user", err)
	}

	u.Role = model.RoleAdmin
	if password != "" {
		if err := validateCredentials(userName, password); err != nil {
			return nil, false, err
		}
		hash, err := crypto.HashPasswordAsBcrypt(password)
		if err != nil {
			return nil, false, internal("hash password", err)
		}
		u.Password = hash
	}
	if err := db.Save(u).Error; err != nil {
		return nil, false, internal("promote admin", err)
	}
	return u, false, nil
}
