package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/infrastructure/auth"
	"github.com/erp/credit/internal/infrastructure/logger"
	"github.com/erp/credit/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gin context keys set by Auth
const (
	ClaimsKey   = "jwt_claims"
	TenantIDKey = "tenant_id"
	ActorKey    = "actor"
)

// Request headers
const (
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
	TenantHeader       = "X-Tenant-ID"
	UserIDHeader       = "X-User-ID"
	UserNameHeader     = "X-User-Name"
	CapabilitiesHeader = "X-Capabilities"
)

// AuthConfig configures Auth. A nil JWTService selects header mode: the
// tenant and actor are taken from X-Tenant-ID and X-User-* headers. The
// config loader refuses header mode in production.
type AuthConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are served without a tenant or actor
	SkipPaths []string
	Logger    *zap.Logger
}

// Auth resolves the tenant and acting user of a request and stores them in
// the gin context, the request context and the request logger.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		var (
			tenantID uuid.UUID
			actor    identity.Actor
			err      error
		)
		if cfg.JWTService != nil {
			tenantID, actor, err = fromBearer(c, cfg.JWTService)
		} else {
			tenantID, actor, err = fromHeaders(c)
		}
		if err != nil {
			log.Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortUnauthorized(c, err)
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(ActorKey, actor)

		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		if actor.UserID != uuid.Nil {
			ctx = logger.WithActor(ctx, actor.UserID.String(), actor.Name)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

var (
	errMissingTenant = errors.New("missing tenant")
	errInvalidTenant = errors.New("invalid tenant id")
	errInvalidUser   = errors.New("invalid user id")
	errMissingBearer = errors.New("missing bearer token")
)

func fromBearer(c *gin.Context, svc *auth.JWTService) (uuid.UUID, identity.Actor, error) {
	header := c.GetHeader(AuthHeaderKey)
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return uuid.Nil, identity.Actor{}, errMissingBearer
	}

	claims, err := svc.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return uuid.Nil, identity.Actor{}, err
	}
	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return uuid.Nil, identity.Actor{}, auth.ErrInvalidClaims
	}
	actor, err := claims.Actor()
	if err != nil {
		return uuid.Nil, identity.Actor{}, err
	}
	c.Set(ClaimsKey, claims)
	return tenantID, actor, nil
}

func fromHeaders(c *gin.Context) (uuid.UUID, identity.Actor, error) {
	rawTenant := strings.TrimSpace(c.GetHeader(TenantHeader))
	if rawTenant == "" {
		return uuid.Nil, identity.Actor{}, errMissingTenant
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil || tenantID == uuid.Nil {
		return uuid.Nil, identity.Actor{}, errInvalidTenant
	}

	actor := identity.Actor{
		Name:         strings.TrimSpace(c.GetHeader(UserNameHeader)),
		Capabilities: identity.ParseCapabilities(c.GetHeader(CapabilitiesHeader)),
	}
	if raw := strings.TrimSpace(c.GetHeader(UserIDHeader)); raw != "" {
		if actor.UserID, err = uuid.Parse(raw); err != nil {
			return uuid.Nil, identity.Actor{}, errInvalidUser
		}
	}
	return tenantID, actor, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, errMissingTenant):
		message = "X-Tenant-ID header is required"
	case errors.Is(err, errInvalidTenant):
		message = "X-Tenant-ID must be a UUID"
	case errors.Is(err, errInvalidUser):
		message = "X-User-ID must be a UUID"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID returns the tenant resolved by Auth
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetActor returns the acting user resolved by Auth, or an anonymous actor
// without capabilities
func GetActor(c *gin.Context) identity.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if a, ok := v.(identity.Actor); ok {
			return a
		}
	}
	return identity.Actor{}
}

// GetClaims returns the JWT claims, nil in header mode
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
