package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/labstack/echo/v4"

	appctx "github.com/PennQuinnDad/college-quest/pkg/context"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

type UserClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AllowListChecker decides whether an email may use the API.
type AllowListChecker interface {
	IsAllowed(ctx context.Context, email string) (bool, error)
}

// ProfileRecorder mirrors the identity provider user on sign-in.
type ProfileRecorder interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

// NewAuthentication builds the OIDC bearer middleware. Verified tokens
// must also carry an allow-listed email; everyone else gets a 403
// before any data access.
func NewAuthentication(logger ectologger.Logger, issuer, clientID string, allowList AllowListChecker, profiles ProfileRecorder) (echo.MiddlewareFunc, error) {
	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", issuer, err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx, span := tracing.StartSpan(ctx, "middleware.Authentication")
			defer span.End()

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				logger.WithContext(ctx).Warn("request is missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer")
			}

			raw := strings.TrimPrefix(auth, "Bearer ")
			verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			idToken, err := verifier.Verify(verifyCtx, raw)
			if err != nil {
				logger.WithContext(ctx).WithError(err).Warn("token is invalid")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			var claims UserClaims
			if err := idToken.Claims(&claims); err != nil {
				logger.WithContext(ctx).WithError(err).Warn("failed to parse claims")
				return echo.NewHTTPError(http.StatusUnauthorized, "cannot parse claims")
			}
			if claims.Email == "" {
				logger.WithContext(ctx).Warn("token has no email claim")
				return echo.NewHTTPError(http.StatusUnauthorized, "cannot parse claims")
			}

			allowed, err := allowList.IsAllowed(ctx, claims.Email)
			if err != nil {
				return err
			}
			if !allowed {
				logger.WithContext(ctx).WithFields(map[string]any{"email": claims.Email}).Warn("email is not on the allow list")
				return echo.NewHTTPError(http.StatusForbidden, "email is not allowed")
			}

			profile := models.Profile{
				ID:    claims.Sub,
				Email: claims.Email,
			}
			if claims.Name != "" {
				profile.DisplayName = &claims.Name
			}
			if err := profiles.Upsert(ctx, &profile); err != nil {
				return err
			}

			ctx = appctx.SetUserID(ctx, claims.Sub)
			ctx = appctx.SetUserEmail(ctx, strings.ToLower(claims.Email))
			ctx = appctx.SetUserName(ctx, claims.Name)

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}, nil
}
