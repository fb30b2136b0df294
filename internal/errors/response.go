package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrNeedsVerification:  http.StatusForbidden,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusBadRequest,

	// 业务错误 (4000-4999)
	ErrUserNotFound:         http.StatusNotFound,
	ErrUserExists:           http.StatusBadRequest,
	ErrBookNotFound:         http.StatusNotFound,
	ErrBookUnavailable:      http.StatusBadRequest,
	ErrExchangeNotFound:     http.StatusNotFound,
	ErrSelfTargeting:        http.StatusBadRequest,
	ErrInvalidTransition:    http.StatusBadRequest,
	ErrNotParticipant:       http.StatusForbidden,
	ErrExchangeNotCompleted: http.StatusBadRequest,
	ErrAlreadyReviewed:      http.StatusBadRequest,
}

// HandleError 统一处理错误响应
func HandleError(c *gin.Context, err error) {
	HandleErrorExtra(c, err, nil)
}

// HandleErrorExtra 处理错误响应并附加额外字段
func HandleErrorExtra(c *gin.Context, err error, extra gin.H) {
	if appErr, ok := err.(*AppError); ok {
		status := errorStatusMap[appErr.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}

		body := gin.H{
			"success": false,
			"message": appErr.Message,
		}
		if len(appErr.Errors) > 0 {
			body["errors"] = appErr.Errors
		}
		for k, v := range extra {
			body[k] = v
		}

		// 记录到 gin 上下文，供错误监控中间件统计
		c.Error(appErr)

		// 内部错误详情只记录日志，不回传给客户端
		if appErr.Err != nil {
			zap.L().Error("请求处理失败",
				zap.Int("code", int(appErr.Code)),
				zap.String("message", appErr.Message),
				zap.Error(appErr.Err),
				zap.String("path", c.Request.URL.Path))
		}

		c.JSON(status, body)
		return
	}

	// 处理非 AppError 类型的错误
	zap.L().Error("未分类的内部错误", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Internal Server Error",
	})
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data gin.H, message string) {
	respond(c, http.StatusOK, data, message)
}

// HandleCreated 处理资源创建成功的响应
func HandleCreated(c *gin.Context, data gin.H, message string) {
	respond(c, http.StatusCreated, data, message)
}

func respond(c *gin.Context, status int, data gin.H, message string) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}
