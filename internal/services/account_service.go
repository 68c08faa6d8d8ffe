package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/upstream"
)

// LoginResult is returned to the storefront after a successful login
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      models.SessionUser `json:"user"`
	Session   *Session           `json:"-"`
}

// AccountService forwards registration and login to the marketplace API and
// keeps the API token in a server-side session
type AccountService struct {
	client   *upstream.Client
	sessions *SessionService
	auth     *AuthService
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(client *upstream.Client, sessions *SessionService, auth *AuthService, logger *zap.Logger) *AccountService {
	return &AccountService{client: client, sessions: sessions, auth: auth, logger: logger}
}

// Register validates the form and forwards it to POST {API}/register
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created json.RawMessage
	if err := s.client.PostJSON(ctx, "/register", "", req, &created); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("email", req.Email))
	return created, nil
}

// Login authenticates against POST {API}/login and opens a session
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	var resp models.LoginResponse
	if err := s.client.PostJSON(ctx, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, fmt.Errorf("login response is missing access_token or user")
	}

	role := models.NormalizeRole(resp.User.Role)
	resp.User.Role = string(role)

	session, err := s.sessions.Create(resp.User, role, resp.AccessToken, s.auth.Expiration())
	if err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateToken(session)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("userId", session.UserID), zap.String("role", session.Role))
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: resp.User, Session: session}, nil
}

// Logout revokes the session and tells the marketplace API, best effort
func (s *AccountService) Logout(ctx context.Context, session *Session) error {
	if err := s.sessions.Revoke(session.ID); err != nil {
		return err
	}
	if err := s.client.PostJSON(ctx, "/logout", session.UpstreamToken, struct{}{}, nil); err != nil {
		s.logger.Debug("upstream logout failed", zap.String("userId", session.UserID), zap.Error(err))
	}
	return nil
}

// AccountTypes lists the account types offered at registration
func (s *AccountService) AccountTypes(ctx context.Context) ([]models.AccountType, error) {
	var types []models.AccountType
	if err := s.client.GetJSON(ctx, "/types", "", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// Regions lists the regions offered at registration
func (s *AccountService) Regions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	if err := s.client.GetJSON(ctx, "/regions", "", &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// Cities lists the cities of a region
func (s *AccountService) Cities(ctx context.Context, regionID string) ([]models.City, error) {
	var cities []models.City
	if err := s.client.GetJSON(ctx, "/regions/"+url.PathEscape(regionID)+"/cities", "", &cities); err != nil {
		return nil, err
	}
	for i := range cities {
		if cities[i].RegionID == "" {
			cities[i].RegionID = models.FlexibleID(regionID)
		}
	}
	return cities, nil
}
