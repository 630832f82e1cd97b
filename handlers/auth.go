package handlers

import (
	"net/http"

	"tenantdesk/models"
	"tenantdesk/services/auth"
	"tenantdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ssoStateCookie = "tenantdesk_sso_state"

// AuthHandler serves password and SSO sign-in.
type AuthHandler struct {
	Auth         auth.AuthService
	SecureCookie bool
}

func NewAuthHandler(authSvc auth.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Auth: authSvc, SecureCookie: secureCookie}
}

func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	logger := getLogger(c)
	var req models.UserRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid registration request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	resp, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("User registered", zap.String("userID", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid login request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	resp, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SSOLoginHandler redirects to the identity provider with a fresh state
// value, which the callback checks against the cookie.
func (h *AuthHandler) SSOLoginHandler(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.Auth.SSOLoginURL(c.Request.Context(), state)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ssoStateCookie, state, 600, "/", "", h.SecureCookie, true)
	c.Redirect(http.StatusFound, url)
}

func (h *AuthHandler) SSOCallbackHandler(c *gin.Context) {
	logger := getLogger(c)

	if idpErr := c.Query("error"); idpErr != "" {
		utils.JSONError(c, http.StatusUnauthorized, "Single sign-on was cancelled", idpErr)
		return
	}
	state, err := c.Cookie(ssoStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		logger.Warn("SSO state mismatch")
		utils.JSONError(c, http.StatusBadRequest, "Invalid sign-in state", "")
		return
	}
	c.SetCookie(ssoStateCookie, "", -1, "/", "", h.SecureCookie, true)

	code := c.Query("code")
	if code == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing authorization code", "")
		return
	}

	resp, err := h.Auth.SSOCallback(c.Request.Context(), code)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.Info("SSO sign-in completed", zap.String("userID", resp.ID))
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// MeHandler returns the authenticated user.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
