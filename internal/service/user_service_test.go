package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/backend/internal/models"
	"skillswap/backend/pkg/auth"
)

func TestUserService_SyncFromIdentity(t *testing.T) {
	ctx := context.Background()
	identity := &auth.Identity{
		ExternalID: "idp|abc123",
		Name:       "Dana",
		Email:      "dana@example.com",
		AvatarURL:  "https://cdn.example.com/dana.png",
	}

	t.Run("FirstSyncCreatesWithSignupBonus", func(t *testing.T) {
		var created *models.User
		var welcome string

		userRepo := &mockUserRepository{}
		userRepo.findByExternalIDFunc = func(ctx context.Context, externalID string) (*models.User, error) {
			return nil, nil
		}
		userRepo.createWithWelcomeFunc = func(ctx context.Context, user *models.User, welcomeMessage string) error {
			user.ID = 1
			created = user
			welcome = welcomeMessage
			return nil
		}

		svc := NewUserService(userRepo, 300, "Welcome to SkillSwap!")

		user, err := svc.SyncFromIdentity(ctx, identity)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, int64(300), created.TotalCredits)
		assert.Equal(t, "Welcome to SkillSwap!", welcome)
		assert.Equal(t, "idp|abc123", user.ExternalID)
		assert.Equal(t, "dana@example.com", user.Email)
	})

	t.Run("ExistingUserIsNotRecreated", func(t *testing.T) {
		existing := &models.User{
			ID:           5,
			ExternalID:   "idp|abc123",
			Name:         "Dana",
			AvatarURL:    "https://cdn.example.com/dana.png",
			TotalCredits: 1200,
		}

		userRepo := &mockUserRepository{}
		userRepo.findByExternalIDFunc = func(ctx context.Context, externalID string) (*models.User, error) {
			return existing, nil
		}
		userRepo.createWithWelcomeFunc = func(ctx context.Context, user *models.User, welcomeMessage string) error {
			t.Fatal("existing user must not be recreated")
			return nil
		}

		svc := NewUserService(userRepo, 300, "Welcome!")

		user, err := svc.SyncFromIdentity(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), user.TotalCredits, "signup bonus must not apply twice")
	})

	t.Run("RefreshesProviderOwnedFields", func(t *testing.T) {
		existing := &models.User{ID: 5, ExternalID: "idp|abc123", Name: "Old Name"}

		updated := false
		userRepo := &mockUserRepository{}
		userRepo.findByExternalIDFunc = func(ctx context.Context, externalID string) (*models.User, error) {
			return existing, nil
		}
		userRepo.updateProfileFunc = func(ctx context.Context, id uint64, name, avatarURL string) error {
			assert.Equal(t, "Dana", name)
			updated = true
			return nil
		}

		svc := NewUserService(userRepo, 300, "Welcome!")

		user, err := svc.SyncFromIdentity(ctx, identity)
		require.NoError(t, err)
		assert.True(t, updated)
		assert.Equal(t, "Dana", user.Name)
	})

	t.Run("RejectsEmptyIdentity", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{}, 300, "Welcome!")

		_, err := svc.SyncFromIdentity(ctx, &auth.Identity{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserService_UpdateSkills(t *testing.T) {
	ctx := context.Background()

	t.Run("DedupesPreservingOrder", func(t *testing.T) {
		var stored []string
		userRepo := &mockUserRepository{}
		userRepo.replaceSkillsFunc = func(ctx context.Context, userID uint64, skills []string) error {
			stored = skills
			return nil
		}

		svc := NewUserService(userRepo, 300, "Welcome!")

		skills, err := svc.UpdateSkills(ctx, 1, 1, []string{"Go", "SQL", "Go", "", "Docker", "SQL"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "SQL", "Docker"}, skills)
		assert.Equal(t, []string{"Go", "SQL", "Docker"}, stored)
	})

	t.Run("OnlySelf", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{}, 300, "Welcome!")

		_, err := svc.UpdateSkills(ctx, 1, 2, []string{"Go"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
