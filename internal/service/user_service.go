package service

import (
	"context"

	"groombot/internal/config"
	"groombot/internal/domain"
	"groombot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo         domain.Repository
	logger       *zerolog.Logger
	adminsMap    map[int64]bool
	blacklistMap map[int64]bool
}

func NewUserService(repo domain.Repository, cfg *config.Config, logger *zerolog.Logger) *UserService {
	adminsMap := make(map[int64]bool)
	for _, id := range cfg.Admins {
		adminsMap[id] = true
	}

	blacklistMap := make(map[int64]bool)
	for _, id := range cfg.Blacklist {
		blacklistMap[id] = true
	}

	return &UserService{
		repo:         repo,
		logger:       logger,
		adminsMap:    adminsMap,
		blacklistMap: blacklistMap,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.adminsMap[userID]
}

func (s *UserService) IsBlacklisted(userID int64) bool {
	return s.blacklistMap[userID]
}

func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	return s.repo.CreateOrUpdateUser(ctx, user)
}

func (s *UserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateUserActivity(ctx, telegramID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}
