package review

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReviewHandler 处理与评价相关的HTTP请求
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
}

// NewReviewHandler 创建一个新的 ReviewHandler 实例
func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{reviewService}
}

// CreateReview 对已完成的交换发表评价
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID := c.GetInt("user_id")

	var requestData struct {
		ExchangeID int    `json:"exchange_id" binding:"required"`
		Rating     int    `json:"rating" binding:"required"`
		Comment    string `json:"comment"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	review, err := h.reviewService.CreateReview(
		userID, requestData.ExchangeID, requestData.Rating, requestData.Comment)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("创建评价失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "创建评价失败", err))
		return
	}

	errors.HandleCreated(c, gin.H{
		"review": review,
	}, "评价发表成功")
}

// GetUserReviews 返回指定用户收到的评价
func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	reviews, err := h.reviewService.GetUserReviews(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取评价列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"reviews": reviews,
	}, "")
}
