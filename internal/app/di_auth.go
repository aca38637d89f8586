package app

import (
	"fmt"

	authRepository "github.com/allisson/sentinel/internal/auth/repository"
	authService "github.com/allisson/sentinel/internal/auth/service"
	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
)

// TokenService returns the JWT signer and verifier.
func (c *Container) TokenService() (authService.TokenService, error) {
	err := c.resolve("tokenService", &c.tokenServiceInit, func() (err error) {
		c.tokenService, err = authService.NewJWTTokenService(
			[]byte(c.config.JWTSecret),
			c.config.JWTIssuer,
			c.config.JWTAudience,
			c.Clock(),
		)
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenService, nil
}

// AuthUseCase returns the authentication use case, wrapped with metrics when enabled.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	err := c.resolve("authUseCase", &c.authUseCaseInit, func() (err error) {
		c.authUseCase, err = c.initAuthUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.authUseCase, nil
}

// initAuthUseCase creates the auth use case with the Redis revocation store.
func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, err
	}

	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for auth use case: %w", err)
	}

	sessionRepo := authRepository.NewRedisSessionRepository(c.RedisClient())

	useCase := authUseCase.NewAuthUseCase(
		tokenService,
		sessionRepo,
		audit,
		c.Clock(),
		c.config.AuthTokenExpiration,
		c.config.AuthMaxTokenExpiration,
	)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
	}
	return authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics), nil
}
