package services

import (
	"fmt"

	"resto_pos_backend/internal/repositories"
)

// AuthzService resolves the effective permission set of a user for
// route gating. Permissions are the union over the user's roles, read
// fresh per request so role edits take effect immediately.
type AuthzService interface {
	Can(userID int64, permission string) (bool, error)
	PermissionsFor(userID int64) ([]string, error)
}

type authzService struct {
	userRepo repositories.UserRepository
}

// NewAuthzService creates a new instance of AuthzService.
func NewAuthzService(userRepo repositories.UserRepository) AuthzService {
	return &authzService{userRepo: userRepo}
}

func (s *authzService) Can(userID int64, permission string) (bool, error) {
	names, err := s.userRepo.GetPermissionNamesForUser(userID)
	if err != nil {
		return false, fmt.Errorf("resolving permissions for user %d: %w", userID, err)
	}
	for _, name := range names {
		if name == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *authzService) PermissionsFor(userID int64) ([]string, error) {
	names, err := s.userRepo.GetPermissionNamesForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("resolving permissions for user %d: %w", userID, err)
	}
	return names, nil
}
