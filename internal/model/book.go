package model

import "time"

// 书籍状态枚举
const (
	ConditionNew        = "New"
	ConditionLikeNew    = "Like New"
	ConditionGood       = "Good"
	ConditionAcceptable = "Acceptable"
	ConditionWorn       = "Worn"
)

// 提供方式枚举
const (
	OfferExchange = "Exchange"
	OfferLoan     = "Loan"
	OfferBoth     = "Both"
)

// Book 结构体表示书籍模型
type Book struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Subject     string    `json:"subject"`
	ISBN        string    `json:"isbn,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Edition     string    `json:"edition,omitempty"`
	Condition   string    `json:"condition"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photo_url"`
	OwnerID     int       `json:"owner_id"`
	Owner       *User     `json:"owner,omitempty"`
	Available   bool      `json:"available"`
	OfferType   string    `json:"offer_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsValidCondition 检查书籍状态是否为合法枚举值
func IsValidCondition(condition string) bool {
	switch condition {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionAcceptable, ConditionWorn:
		return true
	}
	return false
}

// IsValidOfferType 检查提供方式是否为合法枚举值
func IsValidOfferType(offerType string) bool {
	switch offerType {
	case OfferExchange, OfferLoan, OfferBoth:
		return true
	}
	return false
}
