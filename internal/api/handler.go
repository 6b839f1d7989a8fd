package api

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/db"
	"github.com/terraincognita07/glowlog/internal/search"
	"github.com/terraincognita07/glowlog/internal/services"
)

// SessionStore keeps refresh tokens and revoked access tokens.
type SessionStore interface {
	SaveRefreshToken(ctx context.Context, token string, userID uint, ttl time.Duration) error
	ConsumeRefreshToken(ctx context.Context, token string) (uint, error)
	RevokeUserRefreshToken(ctx context.Context, token string, userID uint) error
	RevokeAllSessions(ctx context.Context, userID uint) error
	DenyAccessToken(ctx context.Context, jti string, ttl time.Duration) error
	IsAccessTokenDenied(ctx context.Context, jti string) (bool, error)
	RevokeAccessIssuedBefore(ctx context.Context, userID uint, at time.Time, ttl time.Duration) error
	AccessCutoff(ctx context.Context, userID uint) (time.Time, bool, error)
}

type Options struct {
	Database        *gorm.DB
	Sessions        SessionStore
	SecretKey       []byte
	Location        *time.Location
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Completer       services.Completer
	Logger          *zap.Logger
	Clock           func() time.Time
	PasswordCost    int
}

type Handler struct {
	secretKey       []byte
	location        *time.Location
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	clock           func() time.Time
	logger          *zap.Logger

	sessions        SessionStore
	loginLimiter    *attemptLimiter
	repositories    *db.Repositories
	authService     *services.AuthService
	onboardingSvc   *services.OnboardingService
	calendarService *services.CalendarService
	dashboardSvc    *services.DashboardService
	procedureSvc    *services.ProcedureService
	exportService   *services.ExportService
	challengeSvc    *services.ChallengeService
	recommendations *services.RecommendationService
}

func NewHandler(options Options) (*Handler, error) {
	if options.Database == nil {
		return nil, errors.New("database is required")
	}
	if options.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if len(options.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}

	handler := &Handler{
		secretKey:       options.SecretKey,
		location:        options.Location,
		accessTokenTTL:  options.AccessTokenTTL,
		refreshTokenTTL: options.RefreshTokenTTL,
		clock:           options.Clock,
		logger:          options.Logger,
		sessions:        options.Sessions,
		loginLimiter:    newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
	}
	if handler.location == nil {
		handler.location = time.UTC
	}
	if handler.accessTokenTTL <= 0 {
		handler.accessTokenTTL = services.DefaultAccessTokenTTL
	}
	if handler.refreshTokenTTL <= 0 {
		handler.refreshTokenTTL = services.DefaultRefreshTokenTTL
	}
	if handler.clock == nil {
		handler.clock = time.Now
	}
	if handler.logger == nil {
		handler.logger = zap.NewNop()
	}

	return handler.withDependencies(options.Database, options.Completer, options.PasswordCost), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, completer services.Completer, passwordCost int) *Handler {
	repos := db.NewRepositories(database)
	handler.repositories = repos
	handler.authService = services.NewAuthService(repos.Users)
	if passwordCost > 0 {
		handler.authService.WithHashCost(passwordCost)
	}
	handler.onboardingSvc = services.NewOnboardingService(repos.Users)
	handler.calendarService = services.NewCalendarService(repos.ScheduledProcedures, handler.location)
	handler.dashboardSvc = services.NewDashboardService(repos.Users, repos.ScheduledProcedures, repos.Challenges, handler.location)
	handler.procedureSvc = services.NewProcedureService(repos.Procedures, repos.ScheduledProcedures, search.NewIndex(database), handler.location)
	handler.exportService = services.NewExportService(repos.ScheduledProcedures, handler.location)
	handler.challengeSvc = services.NewChallengeService(repos.Challenges, repos.Challenges, handler.location)
	handler.recommendations = services.NewRecommendationService(completer, repos.Recommendations, repos.Users, handler.dashboardSvc)
	return handler
}

// ChallengeService is exposed for the background sweep.
func (handler *Handler) ChallengeService() *services.ChallengeService {
	return handler.challengeSvc
}

func (handler *Handler) now() time.Time {
	return handler.clock().In(handler.location)
}
