package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/models"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("database connection failed", nil))
			return
		}
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "connected"}))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(c, models.Storage("auth.hash", err))
		return
	}

	user := &models.User{
		Fullname:  req.Fullname,
		Email:     req.Email,
		Password:  string(hashed),
		AvatarSrc: fmt.Sprintf("https://avatars.dicebear.com/api/initials/%s.svg", req.Fullname),
	}
	if err := h.stores.Users.CreateUser(c.Request.Context(), user); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request", err.Error())
		return
	}

	user, err := h.stores.Users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// A missing account and a bad password read the same to the caller.
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("invalid credentials", nil))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("invalid credentials", nil))
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.fail(c, models.Storage("auth.token", err))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"accessToken": token,
		"user":        user,
	}))
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.stores.Users.GetUserByID(c.Request.Context(), authedUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user))
}
