package auth

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const TokenTTL = 12 * time.Hour

type Service struct {
	Store  *Store
	Secret string
}

func NewService(store *Store, secret string) *Service {
	return &Service{Store: store, Secret: secret}
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserContext `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:       user.ID,
		RoleID:       user.RoleID,
		RoleName:     user.RoleName,
		DepartmentID: user.DepartmentID,
	}, TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	_ = s.Store.UpdateLastLogin(ctx, user.ID)

	return LoginResult{Token: token, User: userContext(user)}, nil
}

func userContext(user AuthUser) UserContext {
	return UserContext{
		UserID:       user.ID,
		RoleID:       user.RoleID,
		RoleName:     user.RoleName,
		DepartmentID: user.DepartmentID,
	}
}
