package exchange

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExchangeHandler 处理与交换请求相关的HTTP请求
type ExchangeHandler struct {
	exchangeService service.ExchangeServiceInterface
}

// NewExchangeHandler 创建一个新的 ExchangeHandler 实例
func NewExchangeHandler(exchangeService service.ExchangeServiceInterface) *ExchangeHandler {
	return &ExchangeHandler{exchangeService}
}

// CreateExchange 发起交换或借阅请求
func (h *ExchangeHandler) CreateExchange(c *gin.Context) {
	userID := c.GetInt("user_id")

	var requestData struct {
		BookID        int    `json:"book_id" binding:"required"`
		Type          string `json:"type" binding:"required"`
		OfferedBookID *int   `json:"offered_book_id"`
		Message       string `json:"message"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		util.Logger.Warn("创建交换请求失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	exchange, err := h.exchangeService.CreateExchange(
		userID, requestData.BookID, requestData.Type,
		requestData.OfferedBookID, requestData.Message)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("创建交换请求失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "创建交换请求失败", err))
		return
	}

	errors.HandleCreated(c, gin.H{
		"exchange": exchange,
	}, "交换请求已发送")
}

// GetReceivedExchanges 返回当前用户收到的交换请求
func (h *ExchangeHandler) GetReceivedExchanges(c *gin.Context) {
	userID := c.GetInt("user_id")

	exchanges, err := h.exchangeService.GetReceivedExchanges(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取收到的交换请求失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"exchanges": exchanges,
	}, "")
}

// GetSentExchanges 返回当前用户发出的交换请求
func (h *ExchangeHandler) GetSentExchanges(c *gin.Context) {
	userID := c.GetInt("user_id")

	exchanges, err := h.exchangeService.GetSentExchanges(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取发出的交换请求失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"exchanges": exchanges,
	}, "")
}

// UpdateStatus 更新交换请求状态（书主操作）
func (h *ExchangeHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的交换请求ID"))
		return
	}

	var requestData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	exchange, err := h.exchangeService.UpdateStatus(id, userID, model.ExchangeStatus(requestData.Status))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("更新交换状态失败", zap.Error(err), zap.Int("exchange_id", id))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新交换状态失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"exchange": exchange,
	}, "交换状态已更新")
}

// CompleteExchange 将已接受的交换标记为完成
func (h *ExchangeHandler) CompleteExchange(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的交换请求ID"))
		return
	}

	exchange, err := h.exchangeService.CompleteExchange(id, userID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("完成交换失败", zap.Error(err), zap.Int("exchange_id", id))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "完成交换失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"exchange": exchange,
	}, "交换已完成")
}
