package model

import "time"

// ExchangeStatus 定义交换请求的状态
type ExchangeStatus string

const (
	StatusPending   ExchangeStatus = "Pending"
	StatusAccepted  ExchangeStatus = "Accepted"
	StatusRejected  ExchangeStatus = "Rejected"
	StatusCompleted ExchangeStatus = "Completed"
	StatusCancelled ExchangeStatus = "Cancelled"
)

// 交换类型枚举
const (
	ExchangeTypeExchange = "Exchange"
	ExchangeTypeLoan     = "Loan"
)

// validTransitions 是封闭的状态转换表，不在表中的转换一律拒绝
var validTransitions = map[ExchangeStatus][]ExchangeStatus{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusCompleted},
}

// CanTransition 判断状态转换是否合法
func CanTransition(from, to ExchangeStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidStatus 检查状态是否为合法枚举值
func IsValidStatus(status ExchangeStatus) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Exchange 结构体表示交换/借阅请求模型
type Exchange struct {
	ID            int            `json:"id"`
	RequesterID   int            `json:"requester_id"`
	OwnerID       int            `json:"owner_id"`
	BookID        int            `json:"book_id"`
	Type          string         `json:"type"`
	OfferedBookID *int           `json:"offered_book_id,omitempty"`
	Status        ExchangeStatus `json:"status"`
	Message       string         `json:"message,omitempty"`
	DeliveryDate  *time.Time     `json:"delivery_date,omitempty"`
	ReturnDate    *time.Time     `json:"return_date,omitempty"`
	Requester     *User          `json:"requester,omitempty"`
	Owner         *User          `json:"owner,omitempty"`
	Book          *Book          `json:"book,omitempty"`
	OfferedBook   *Book          `json:"offered_book,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsParticipant 判断用户是否为该交换的参与方
func (e *Exchange) IsParticipant(userID int) bool {
	return e.RequesterID == userID || e.OwnerID == userID
}
