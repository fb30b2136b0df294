package mysql

import (
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// reviewRepository 实现了 ReviewRepository 接口
type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository 创建一个新的 reviewRepository 实例
func NewReviewRepository(db *sql.DB) *reviewRepository {
	return &reviewRepository{db}
}

// FindByExchangeAndReviewer 查找某用户对某次交换的评价
func (r *reviewRepository) FindByExchangeAndReviewer(exchangeID, reviewerID int) (*model.Review, error) {
	query := `SELECT id, exchange_id, reviewer_id, reviewed_id, rating, comment, created_at
              FROM reviews WHERE exchange_id = ? AND reviewer_id = ?`
	var review model.Review
	var comment sql.NullString
	err := r.db.QueryRow(query, exchangeID, reviewerID).Scan(
		&review.ID, &review.ExchangeID, &review.ReviewerID, &review.ReviewedID,
		&review.Rating, &comment, &review.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	review.Comment = comment.String
	return &review, nil
}

// FindByReviewed 返回用户收到的评价，附带评价者信息，按时间降序
func (r *reviewRepository) FindByReviewed(reviewedID int) ([]*model.Review, error) {
	query := `SELECT r.id, r.exchange_id, r.reviewer_id, r.reviewed_id, r.rating,
                     r.comment, r.created_at,
                     u.name, u.avatar_url
              FROM reviews r
              JOIN users u ON u.id = r.reviewer_id
              WHERE r.reviewed_id = ?
              ORDER BY r.created_at DESC`
	rows, err := r.db.Query(query, reviewedID)
	if err != nil {
		util.Logger.Error("查询评价失败", zap.Error(err), zap.Int("reviewed_id", reviewedID))
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		var review model.Review
		var comment sql.NullString
		var reviewer model.UserProfile
		err := rows.Scan(
			&review.ID, &review.ExchangeID, &review.ReviewerID, &review.ReviewedID,
			&review.Rating, &comment, &review.CreatedAt,
			&reviewer.Name, &reviewer.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		review.Comment = comment.String
		reviewer.ID = review.ReviewerID
		review.Reviewer = &reviewer
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}
