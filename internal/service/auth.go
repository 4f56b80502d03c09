package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filemart/internal/model"
	"filemart/internal/repository"
	"filemart/internal/token"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("bad credentials")

// AuthService checks credentials and issues session tokens. One method per
// token kind; the kinds never share a code path that could mix secrets.
type AuthService interface {
	Register(ctx context.Context, email, name, password string) error
	LoginUser(ctx context.Context, email, password string) (signedToken string, err error)
	LoginAdmin(ctx context.Context, email, password string) (signedToken string, err error)
}

type authServiceImpl struct {
	userRepo repository.UserRepository
	codec    *token.Codec
}

func NewAuthService(userRepo repository.UserRepository, codec *token.Codec) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		codec:    codec,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, email, name, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email")
	}
	if len(password) < 8 {
		return fmt.Errorf("password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.userRepo.Create(ctx, &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *authServiceImpl) LoginUser(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	signed, err := s.codec.Issue(token.KindUser, user.Email, user.Email, user.Name, token.UserTTL)
	if err != nil {
		return "", fmt.Errorf("issue user token: %w", err)
	}

	return signed, nil
}

func (s *authServiceImpl) LoginAdmin(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.userRepo.FindAdminByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	signed, err := s.codec.Issue(token.KindAdmin, admin.Email, admin.Email, admin.Name, token.AdminTTL)
	if err != nil {
		return "", fmt.Errorf("issue admin token: %w", err)
	}

	return signed, nil
}
