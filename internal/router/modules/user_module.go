package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmarques/accounts-api/internal/container"
	handlers "github.com/dmarques/accounts-api/internal/interface/http"
	"github.com/dmarques/accounts-api/internal/interface/middleware"
	"github.com/dmarques/accounts-api/pkg/helpers"
)

// UserModule wires account HTTP handlers and JWT middleware into routes.
// Public: register, email existence check, login, refresh.
// Protected: profile/address/phone updates, lookup, delete, search, logout.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	existsLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.GET("/users/exists", existsLimiter, m.Handler.EmailExists)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/users", m.Handler.FindByEmail)
		auth.DELETE("/users", m.Handler.DeleteByEmail)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/addresses/:id", m.Handler.UpdateAddress)
		auth.PUT("/phones/:id", m.Handler.UpdatePhone)
		auth.GET("/users/search", m.Handler.Search)
	}
}
