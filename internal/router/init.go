package router

import (
	userapp "github.com/dmarques/accounts-api/internal/application"
	"github.com/dmarques/accounts-api/internal/container"
	pginfra "github.com/dmarques/accounts-api/internal/infrastructure/postgres"
	handlers "github.com/dmarques/accounts-api/internal/interface/http"
	"github.com/dmarques/accounts-api/internal/router/modules"
)

func buildUserModule() *modules.UserModule {
	pool := container.GetPGPool()
	cfg := container.GetConfig()

	users := pginfra.NewUserRepository(pool)
	addresses := pginfra.NewAddressRepository(pool)
	phones := pginfra.NewPhoneRepository(pool)

	// Keep the interface nil when no publisher was constructed, otherwise
	// the nil-publisher guard in the service never fires.
	var mail userapp.MailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	service := userapp.NewService(
		users,
		addresses,
		phones,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		mail,
		container.GetES(),
		cfg.ESUsersIndex,
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetJWT(),
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)

	return modules.NewUserModule(handler, container.GetJWT())
}

// InitModules wires every application module into the router registry.
// Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
