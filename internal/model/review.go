package model

import "time"

// Review 结构体表示交换评价模型
type Review struct {
	ID         int          `json:"id"`
	ExchangeID int          `json:"exchange_id"`
	ReviewerID int          `json:"reviewer_id"`
	ReviewedID int          `json:"reviewed_id"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment,omitempty"`
	Reviewer   *UserProfile `json:"reviewer,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
