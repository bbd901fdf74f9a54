package services

import (
	"database/sql"
	"errors"
	"fmt"

	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse mirrors the token payload the terminals expect.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// LogoutRequest optionally names a table to free when a waiter signs
// off their shift mid-service.
type LogoutRequest struct {
	Number *int64 `json:"number"`
}

// --- AuthService Interface ---

type AuthService interface {
	Login(req LoginRequest) (*LoginResponse, error)
	Me(userID int64) (*UserResponse, error)
	Refresh(userID int64, username string) (*LoginResponse, error)
	Logout(userID int64, req LogoutRequest) error
}

type authService struct {
	userRepo  repositories.UserRepository
	tableRepo repositories.TableRepository
	db        *sql.DB
	notifier  Notifier
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, tableRepo repositories.TableRepository, db *sql.DB, notifier Notifier) AuthService {
	return &authService{
		userRepo:  userRepo,
		tableRepo: tableRepo,
		db:        db,
		notifier:  orNoop(notifier),
	}
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("%w: username must match %s", ErrValidation, usernamePattern.String())
	}

	user, hashedPassword, err := s.userRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user.ID, user.Username)
}

func (s *authService) Me(userID int64) (*UserResponse, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	roles, err := s.userRepo.GetRolesForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user %d: %w", userID, err)
	}
	return newUserResponse(user, roles), nil
}

// Refresh issues a fresh token for an already-authenticated principal.
func (s *authService) Refresh(userID int64, username string) (*LoginResponse, error) {
	if _, err := s.userRepo.GetUserByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.issueToken(userID, username)
}

// Logout frees the named table, if any. The token itself stays valid
// until expiry; the client discards it.
func (s *authService) Logout(userID int64, req LogoutRequest) error {
	if req.Number == nil {
		return nil
	}
	if err := s.tableRepo.ReleaseByNumber(s.db, *req.Number); err != nil {
		return fmt.Errorf("releasing table %d on logout: %w", *req.Number, err)
	}
	s.notifier.Broadcast(EventRefreshTables, nil)
	return nil
}

func (s *authService) issueToken(userID int64, username string) (*LoginResponse, error) {
	token, err := utils.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	me, err := s.Me(userID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(utils.TokenTTL().Seconds()),
		User:        me,
	}, nil
}
