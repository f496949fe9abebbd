package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/config"
	"github.com/kautilyalaw/core/internal/middleware"
	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/pkg/response"
)

// AdminCookieName marks an admin session for the UI. It is not a security
// control; the admin routes re-check the role on the server.
const AdminCookieName = "admin"

type Handler struct {
	svc *Service
	cfg config.AuthConfig
}

func NewHandler(svc *Service, cfg config.AuthConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")

	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/google", h.loginWithGoogle)

	g.POST("/logout", authMW, h.logout)
	g.GET("/session", authMW, h.getSession)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.LoginWithEmail(dto.Email, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.writeLoginError(c, err)
		return
	}
	h.finishLogin(c, token, u)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.Register(&dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, errAlreadyRegistered):
			response.Conflict(c, "This email is already registered.")
		case errors.Is(err, errInvalidEmail):
			response.BadRequest(c, "The email address is badly formatted.")
		default:
			response.InternalError(c, err)
		}
		return
	}
	h.finishLogin(c, token, u)
}

func (h *Handler) loginWithGoogle(c *gin.Context) {
	var dto GoogleLoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.LoginWithGoogle(dto.IDToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.writeLoginError(c, err)
		return
	}
	h.finishLogin(c, token, u)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	h.clearCookies(c)
	response.NoContent(c)
}

func (h *Handler) getSession(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, toUserResponse(u))
}

// finishLogin sets cookies and assembles the login payload. The first-login
// redirect is one-shot: reported once per account, reset on logout.
func (h *Handler) finishLogin(c *gin.Context, token string, u *models.UserModel) {
	firstLogin, err := h.svc.MarkFirstLoginDone(u.ID)
	if err != nil {
		firstLogin = false
	}

	maxAge := int(h.sessionTTL() / time.Second)
	c.SetCookie(middleware.AuthCookieName, token, maxAge, "/", "", false, true)
	if u.Role == models.RoleAdmin {
		c.SetCookie(AdminCookieName, "1", maxAge, "/", "", false, false)
	}

	payload := loginResponse{
		Token:      token,
		User:       toUserResponse(u),
		FirstLogin: firstLogin,
	}
	if firstLogin && h.cfg.FirstLoginRedirectURL != "" {
		payload.RedirectURL = h.cfg.FirstLoginRedirectURL
	}
	response.OK(c, payload)
}

func (h *Handler) writeLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUserNotFound):
		response.ForbiddenMsg(c, "No account found for this email.")
	case errors.Is(err, errWrongPassword):
		response.ForbiddenMsg(c, "Incorrect password.")
	case errors.Is(err, errInvalidEmail):
		response.BadRequest(c, "The email address is badly formatted.")
	case errors.Is(err, errAccountDisabled):
		response.ForbiddenMsg(c, "This account has been disabled.")
	case errors.Is(err, errInvalidGoogleToken):
		response.Unauthorized(c)
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) clearCookies(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.SetCookie(AdminCookieName, "", -1, "/", "", false, false)
}

func (h *Handler) sessionTTL() time.Duration {
	if h.cfg.SessionTTLHours > 0 {
		return time.Duration(h.cfg.SessionTTLHours) * time.Hour
	}
	return 30 * 24 * time.Hour
}

func toUserResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Provider:      u.Provider,
		LastLoginTime: u.LastLoginTime,
	}
}
