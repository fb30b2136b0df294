package user

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/storage"
	"bookshare-backend/internal/util"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	userService service.UserServiceInterface
	storage     storage.Storage
}

func NewProfileHandler(userService service.UserServiceInterface, storage storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// UpdateProfile 更新当前用户资料，可同时上传头像（multipart）
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	name := c.PostForm("name")
	phone := c.PostForm("phone")
	university := c.PostForm("university")
	program := c.PostForm("program")

	if file, err := c.FormFile("avatar"); err == nil {
		filename := util.GenerateUniqueFilename(file.Filename)
		path := fmt.Sprintf("avatars/%d/%s", userID, filename)

		avatarURL, err := h.storage.UploadFile(file, path)
		if err != nil {
			util.Logger.Error("上传头像失败", zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
			return
		}

		if err := h.userService.UpdateAvatar(userID, avatarURL); err != nil {
			util.Logger.Error("更新用户头像失败", zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户头像失败", err))
			return
		}
	}

	user, err := h.userService.UpdateProfile(userID, name, phone, university, program)
	if err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "资料更新成功")
}
