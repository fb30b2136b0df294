package interfaces

import "bookshare-backend/internal/model"

// ReviewRepository 接口定义了评价仓库应该实现的方法
type ReviewRepository interface {
	FindByExchangeAndReviewer(exchangeID, reviewerID int) (*model.Review, error)
	FindByReviewed(reviewedID int) ([]*model.Review, error)
}
