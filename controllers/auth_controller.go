// controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"toollend/app"
	"toollend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/register
// Students register freely; an unused, unexpired invite token for the same
// email upgrades the new account to admin.
func (ac *AuthController) Register(c *gin.Context) {
	var in struct {
		Username    string `json:"username" binding:"required,email"`
		DisplayName string `json:"displayName" binding:"required"`
		Password    string `json:"password" binding:"required,min=8"`
		InviteToken string `json:"inviteToken"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))

	admin := false
	if in.InviteToken != "" {
		inv, err := ac.Repo.GetInviteByToken(c.Request.Context(), in.InviteToken)
		if err != nil || inv.UsedAt != nil || time.Now().After(inv.ExpiresAt) || inv.Email != username {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid invite token"})
			return
		}
		admin = true
	}

	hash, salt, err := app.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsAdmin:      admin,
	}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			c.JSON(http.StatusConflict, app.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if in.InviteToken != "" {
		_ = ac.Repo.MarkInviteUsed(c.Request.Context(), in.InviteToken)
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByUsername(c.Request.Context(), strings.ToLower(strings.TrimSpace(in.Username)))
	if err != nil {
		// 用户不存在和密码错误返回同一个错误
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	ok, err := app.VerifyPassword(in.Password, u.PasswordSalt, u.PasswordHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /api/auth/logout（登出：删 Redis，会话 Cookie 置空）
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(ac.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/whoami
func (ac *AuthController) Whoami(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := ac.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"userID":      u.ID,
		"username":    u.Username,
		"displayName": u.DisplayName,
		"isAdmin":     isAdmin(c),
	})
}
