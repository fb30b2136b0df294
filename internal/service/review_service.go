package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ReviewService 处理评价及评分重算的业务逻辑
type ReviewService struct {
	reviewRepo   interfaces.ReviewRepository
	exchangeRepo interfaces.ExchangeRepository
	db           *sql.DB
}

// NewReviewService 创建一个新的 ReviewService 实例
func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	exchangeRepo interfaces.ExchangeRepository,
	db *sql.DB,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		exchangeRepo: exchangeRepo,
		db:           db,
	}
}

// CreateReview 创建评价。交换必须已完成，评价者必须是参与方，
// 且同一交换每人只能评价一次。评价插入和被评用户的平均分更新在同一事务内完成
func (s *ReviewService) CreateReview(reviewerID, exchangeID, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.New(errors.ErrValidation, "评分必须在1到5之间")
	}
	if len(comment) > 500 {
		return nil, errors.New(errors.ErrValidation, "评论不能超过500个字符")
	}

	exchange, err := s.exchangeRepo.FindByID(exchangeID)
	if err != nil {
		return nil, fmt.Errorf("查询交换请求失败: %w", err)
	}
	if exchange == nil {
		return nil, errors.New(errors.ErrExchangeNotFound, "交换请求不存在")
	}
	if exchange.Status != model.StatusCompleted {
		return nil, errors.New(errors.ErrExchangeNotCompleted, "只能评价已完成的交换")
	}
	if !exchange.IsParticipant(reviewerID) {
		return nil, errors.New(errors.ErrNotParticipant, "只有交换参与方可以评价")
	}

	existing, err := s.reviewRepo.FindByExchangeAndReviewer(exchangeID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("查询已有评价失败: %w", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrAlreadyReviewed, "您已评价过该交换")
	}

	// 被评价方是交换中的另一位参与者
	reviewedID := exchange.RequesterID
	if reviewerID == exchange.RequesterID {
		reviewedID = exchange.OwnerID
	}

	tx, err := s.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO reviews (exchange_id, reviewer_id, reviewed_id, rating, comment)
		 VALUES (?, ?, ?, ?, ?)`,
		exchangeID, reviewerID, reviewedID, rating, comment)
	if err != nil {
		util.Logger.Error("创建评价失败", zap.Error(err), zap.Int("exchange_id", exchangeID))
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	reviewID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get review ID: %w", err)
	}

	// 重算被评用户的平均分（保留一位小数）
	var avg float64
	if err := tx.QueryRow(
		`SELECT AVG(rating) FROM reviews WHERE reviewed_id = ?`, reviewedID).Scan(&avg); err != nil {
		util.Logger.Error("计算平均评分失败", zap.Error(err), zap.Int("reviewed_id", reviewedID))
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}
	avg = math.Round(avg*10) / 10

	if _, err := tx.Exec(
		`UPDATE users SET rating = ? WHERE id = ?`, avg, reviewedID); err != nil {
		util.Logger.Error("更新用户评分失败", zap.Error(err), zap.Int("reviewed_id", reviewedID))
		return nil, fmt.Errorf("failed to update user rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	review := &model.Review{
		ID:         int(reviewID),
		ExchangeID: exchangeID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     rating,
		Comment:    comment,
	}
	util.Logger.Info("评价创建成功",
		zap.Int("review_id", review.ID),
		zap.Int("reviewed_id", reviewedID),
		zap.Float64("new_rating", avg))
	return review, nil
}

// GetUserReviews 返回用户收到的评价
func (s *ReviewService) GetUserReviews(userID int) ([]*model.Review, error) {
	return s.reviewRepo.FindByReviewed(userID)
}

type ReviewServiceInterface interface {
	CreateReview(reviewerID, exchangeID, rating int, comment string) (*model.Review, error)
	GetUserReviews(userID int) ([]*model.Review, error)
}

// 确保 ReviewService 实现了 ReviewServiceInterface
var _ ReviewServiceInterface = (*ReviewService)(nil)
