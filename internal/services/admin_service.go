package services

import (
	"context"

	"go.uber.org/zap"

	"agrimarket-backend/internal/fallback"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
	"agrimarket-backend/internal/utils"
)

// AdminService backs the admin dashboard
type AdminService struct {
	loader *upstream.Loader
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(loader *upstream.Loader, logger *zap.Logger) *AdminService {
	return &AdminService{loader: loader, logger: logger}
}

// Analytics returns the platform analytics
func (s *AdminService) Analytics(ctx context.Context, token string) (upstream.Result[models.AdminAnalytics], error) {
	return upstream.FetchWithFallback(ctx, s.loader, "admin_analytics", "/admin/analytics", token, fallback.AdminAnalytics)
}

// Users returns one page of the users table after filtering
func (s *AdminService) Users(ctx context.Context, token string, filter models.AdminUserFilter) (upstream.Result[models.AdminUserPage], error) {
	users, err := upstream.FetchWithFallback(ctx, s.loader, "admin_users", "/admin/users", token, fallback.AdminUsers)
	if err != nil {
		return upstream.Result[models.AdminUserPage]{}, err
	}

	page, limit := utils.NormalizePage(filter.Page, filter.Limit, 20, maxPageSize)
	items, total := utils.Paginate(filter.Apply(users.Data), page, limit)
	return upstream.Result[models.AdminUserPage]{
		Source: users.Source,
		Data:   models.AdminUserPage{Items: items, Total: total, Page: page, Limit: limit},
	}, nil
}

// Settings returns the marketplace settings
func (s *AdminService) Settings(ctx context.Context, token string) (upstream.Result[models.AdminSettings], error) {
	return upstream.FetchWithFallback(ctx, s.loader, "admin_settings", "/admin/settings", token, fallback.AdminSettings)
}

// UpdateSettings validates and saves the marketplace settings
func (s *AdminService) UpdateSettings(ctx context.Context, token string, settings models.AdminSettings) (*models.AdminSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.loader.Client().PutJSON(ctx, "/admin/settings", token, settings, nil); err != nil {
		return nil, err
	}
	s.logger.Info("marketplace settings updated", zap.String("siteName", settings.General.SiteName))
	return &settings, nil
}
