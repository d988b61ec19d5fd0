package service

import (
	"context"
	"fmt"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/auth"
	"skillswap/backend/pkg/helpers"
)

// UserService syncs accounts from the identity provider and serves profiles.
type UserService interface {
	SyncFromIdentity(ctx context.Context, identity *auth.Identity) (*models.User, error)
	GetProfile(ctx context.Context, userID uint64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actorID, userID uint64, name, avatarURL string) error
	UpdateSkills(ctx context.Context, actorID, userID uint64, skills []string) ([]string, error)
}

type userService struct {
	userRepo    repository.UserRepository
	signupBonus int64
	welcomeMsg  string
}

func NewUserService(userRepo repository.UserRepository, signupBonus int64, welcomeMessage string) UserService {
	return &userService{
		userRepo:    userRepo,
		signupBonus: signupBonus,
		welcomeMsg:  welcomeMessage,
	}
}

// SyncFromIdentity resolves the caller's account. First sync creates the user
// with the signup bonus applied and the welcome notification seeded; later
// syncs refresh the profile fields the provider owns.
func (s *userService) SyncFromIdentity(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, fmt.Errorf("%w: missing external identity", ErrValidation)
	}

	user, err := s.userRepo.FindByExternalID(ctx, identity.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user = &models.User{
			ExternalID:   identity.ExternalID,
			Name:         identity.Name,
			Email:        identity.Email,
			AvatarURL:    identity.AvatarURL,
			TotalCredits: s.signupBonus,
		}
		if err := s.userRepo.CreateWithWelcome(ctx, user, s.welcomeMsg); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	if identity.Name != user.Name || identity.AvatarURL != user.AvatarURL {
		if err := s.userRepo.UpdateProfile(ctx, user.ID, identity.Name, identity.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to refresh profile: %w", err)
		}
		user.Name = identity.Name
		user.AvatarURL = identity.AvatarURL
	}

	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*models.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	skills, err := s.userRepo.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}

	return &models.Profile{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		AvatarURL:     user.AvatarURL,
		TotalCredits:  user.TotalCredits,
		CreditsEarned: user.CreditsEarned,
		CreditsSpent:  user.CreditsSpent,
		SkillCoins:    user.SkillCoins,
		Skills:        skills,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actorID, userID uint64, name, avatarURL string) error {
	if actorID != userID {
		return ErrUnauthorized
	}
	if name == "" {
		return fmt.Errorf("%w: %s", ErrValidation, helpers.EncodeValidationError(
			helpers.CreateValidationError("name", "name is required")))
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, name, avatarURL); err != nil {
		if err == repository.ErrUserNotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// UpdateSkills replaces the skill set. Duplicates collapse to the first
// occurrence; insertion order is preserved for display.
func (s *userService) UpdateSkills(ctx context.Context, actorID, userID uint64, skills []string) ([]string, error) {
	if actorID != userID {
		return nil, ErrUnauthorized
	}

	seen := make(map[string]bool, len(skills))
	deduped := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		deduped = append(deduped, skill)
	}

	if err := s.userRepo.ReplaceSkills(ctx, userID, deduped); err != nil {
		return nil, fmt.Errorf("failed to update skills: %w", err)
	}

	return deduped, nil
}
