package user

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserServiceInterface
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{userService}
}

// GetUsers 返回除当前用户外的所有用户
func (h *UserHandler) GetUsers(c *gin.Context) {
	userID := c.GetInt("user_id")

	users, err := h.userService.GetUsers(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"users": users,
	}, "")
}

// GetUserByID 返回指定用户的公开资料
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}
