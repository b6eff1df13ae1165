package cli

import (
	"fmt"
	"log/slog"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
	"github.com/pabloleguizamon/dragon-challenge/internal/config"
	"github.com/pabloleguizamon/dragon-challenge/internal/db"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

// buildServices assembles the service layer over the opened stores.
func buildServices(cfg *config.Config, stores *db.Stores, log *slog.Logger) (service.Services, error) {
	policy, err := service.PolicyByName(cfg.App.OrderStatusPolicy)
	if err != nil {
		return service.Services{}, fmt.Errorf("order status policy: %w", err)
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return service.Services{
		Auth: service.NewAuthService(stores.Users, auth.NewHasher(), tokens,
			service.WithIdentityRefresh(cfg.Auth.RefreshIdentity),
			service.WithAuthLogger(log)),
		Products: service.NewProductService(stores.Products),
		Orders: service.NewOrderService(stores.Products, stores.Orders, stores.Tx,
			service.WithStatusPolicy(policy),
			service.WithOrderLogger(log)),
		Users:  service.NewUserService(stores.Users),
		Access: service.Access{EnforceRoles: cfg.Auth.EnforceRoles},
	}, nil
}
