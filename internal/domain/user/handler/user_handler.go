package handler

import (
	"errors"
	"net/http"

	"coupon_market/internal/domain/user/service"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// LoginInput 登录/注册请求
type LoginInput struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
}

// LoginOrRegister 登录或注册（身份引导，凭证验证在外部）
func (h *UserHandler) LoginOrRegister(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	token, user, err := h.service.LoginOrRegister(input.Username)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"token": token, "user": user})
}

// GetProfile 当前用户信息
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, _ := identity.FromContext(c)

	user, err := h.service.GetUser(id.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrUserNotFound, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}
