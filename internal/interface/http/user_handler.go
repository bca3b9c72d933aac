package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/dmarques/accounts-api/internal/application"
	"github.com/dmarques/accounts-api/internal/interface/middleware"
	"github.com/dmarques/accounts-api/pkg/helpers"
	"github.com/dmarques/accounts-api/pkg/response"
	"github.com/dmarques/accounts-api/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *userapp.Service, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

func strptr(s string) *string { return &s }

type registerRequest struct {
	Name      string           `json:"name" binding:"required"`
	Email     string           `json:"email" binding:"required,email"`
	Password  string           `json:"password" binding:"required,pwd"`
	Addresses []addressRequest `json:"addresses"`
	Phones    []phoneRequest   `json:"phones"`
}

type addressRequest struct {
	Street     string `json:"street"`
	Number     int64  `json:"number"`
	Complement string `json:"complement"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type phoneRequest struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (req registerRequest) toDTO() userapp.UserDTO {
	dto := userapp.UserDTO{
		Name:      strptr(req.Name),
		Email:     strptr(req.Email),
		Password:  strptr(req.Password),
		Addresses: make([]userapp.AddressDTO, 0, len(req.Addresses)),
		Phones:    make([]userapp.PhoneDTO, 0, len(req.Phones)),
	}
	for _, a := range req.Addresses {
		dto.Addresses = append(dto.Addresses, userapp.AddressDTO{
			Street:     &a.Street,
			Number:     &a.Number,
			Complement: &a.Complement,
			City:       &a.City,
			State:      &a.State,
			PostalCode: &a.PostalCode,
		})
	}
	for _, p := range req.Phones {
		dto.Phones = append(dto.Phones, userapp.PhoneDTO{AreaCode: &p.AreaCode, Number: &p.Number})
	}
	return dto
}

// sanitize strips the password hash before a DTO leaves the service boundary.
func sanitize(d userapp.UserDTO) userapp.UserDTO {
	d.Password = nil
	return d
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	created, err := h.Svc.Register(c.Request.Context(), req.toDTO())
	if err != nil {
		if errors.Is(err, userapp.ErrEmailExists) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).WithField("email", req.Email).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to register", nil)
		return
	}
	response.Success(c, http.StatusCreated, sanitize(created), "account registered", nil)
}

func (h *UserHandler) EmailExists(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "email query parameter is required", nil)
		return
	}
	exists, err := h.Svc.EmailExists(c.Request.Context(), email)
	if err != nil {
		h.Logger.WithError(err).WithField("email", email).Error("email existence check failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to check email", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exists": exists}, "email checked", nil)
}

func (h *UserHandler) FindByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "email query parameter is required", nil)
		return
	}
	u, err := h.Svc.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("email", email).Error("find by email failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to find user", nil)
		return
	}
	response.Success(c, http.StatusOK, sanitize(u), "user found", nil)
}

func (h *UserHandler) DeleteByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "email query parameter is required", nil)
		return
	}
	if err := h.Svc.DeleteByEmail(c.Request.Context(), email); err != nil {
		h.Logger.WithError(err).WithField("email", email).Error("delete by email failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete user", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var dto userapp.UserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	// Collections are never merged through this endpoint.
	dto.Addresses = nil
	dto.Phones = nil

	token := c.GetHeader("Authorization")
	if token == "" {
		if cookie, err := c.Cookie("access_token"); err == nil {
			token = cookie
		}
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), token, dto)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrInvalidToken):
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("update profile failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, sanitize(u), "profile updated", nil)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid address id", nil)
		return
	}
	var dto userapp.AddressDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.UpdateAddress(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, userapp.ErrAddressNotFound) {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("address_id", id).Error("update address failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update address", nil)
		return
	}
	response.Success(c, http.StatusOK, a, "address updated", nil)
}

func (h *UserHandler) UpdatePhone(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid phone id", nil)
		return
	}
	var dto userapp.PhoneDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdatePhone(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, userapp.ErrPhoneNotFound) {
			response.Error[any](c, http.StatusNotFound, "phone not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("phone_id", id).Error("update phone failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update phone", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "phone updated", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if userID := c.GetInt64(middleware.CtxUserIDKey); userID != 0 {
		if err := h.Svc.Logout(c.Request.Context(), userID); err != nil {
			h.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q query parameter is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("q", q).Error("user search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
