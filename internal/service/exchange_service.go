package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// ExchangeService 处理交换/借阅请求的业务逻辑
type ExchangeService struct {
	exchangeRepo interfaces.ExchangeRepository
	bookRepo     interfaces.BookRepository
	db           *sql.DB
}

// NewExchangeService 创建一个新的 ExchangeService 实例
func NewExchangeService(
	exchangeRepo interfaces.ExchangeRepository,
	bookRepo interfaces.BookRepository,
	db *sql.DB,
) *ExchangeService {
	return &ExchangeService{
		exchangeRepo: exchangeRepo,
		bookRepo:     bookRepo,
		db:           db,
	}
}

// CreateExchange 创建交换/借阅请求
func (s *ExchangeService) CreateExchange(requesterID, bookID int, exchangeType string, offeredBookID *int, message string) (*model.Exchange, error) {
	if exchangeType != model.ExchangeTypeExchange && exchangeType != model.ExchangeTypeLoan {
		return nil, errors.New(errors.ErrValidation, "无效的请求类型")
	}

	book, err := s.bookRepo.FindByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("查询书籍失败: %w", err)
	}
	if book == nil {
		return nil, errors.New(errors.ErrBookNotFound, "书籍不存在")
	}
	if !book.Available {
		return nil, errors.New(errors.ErrBookUnavailable, "该书籍当前不可用")
	}
	if book.OwnerID == requesterID {
		return nil, errors.New(errors.ErrSelfTargeting, "不能请求自己的书籍")
	}

	// 交换类型必须提供一本自己的书
	if exchangeType == model.ExchangeTypeExchange {
		if offeredBookID == nil {
			return nil, errors.New(errors.ErrValidation, "交换请求必须提供一本自己的书")
		}
		offered, err := s.bookRepo.FindByID(*offeredBookID)
		if err != nil {
			return nil, fmt.Errorf("查询提供的书籍失败: %w", err)
		}
		if offered == nil {
			return nil, errors.New(errors.ErrBookNotFound, "提供的书籍不存在")
		}
		if offered.OwnerID != requesterID {
			return nil, errors.New(errors.ErrForbidden, "只能提供自己的书籍")
		}
		if !offered.Available {
			return nil, errors.New(errors.ErrBookUnavailable, "提供的书籍当前不可用")
		}
	} else {
		offeredBookID = nil
	}

	exchange := &model.Exchange{
		RequesterID:   requesterID,
		OwnerID:       book.OwnerID,
		BookID:        bookID,
		Type:          exchangeType,
		OfferedBookID: offeredBookID,
		Status:        model.StatusPending,
		Message:       message,
	}

	if err := s.exchangeRepo.Create(exchange); err != nil {
		return nil, err
	}
	return exchange, nil
}

// GetReceivedExchanges 返回用户收到的请求
func (s *ExchangeService) GetReceivedExchanges(ownerID int) ([]*model.Exchange, error) {
	return s.exchangeRepo.FindByOwner(ownerID)
}

// GetSentExchanges 返回用户发出的请求
func (s *ExchangeService) GetSentExchanges(requesterID int) ([]*model.Exchange, error) {
	return s.exchangeRepo.FindByRequester(requesterID)
}

// UpdateStatus 更新请求状态，只有书主可以操作。
// 转换必须在状态转换表中；接受请求时书籍在同一事务内标记为不可用
func (s *ExchangeService) UpdateStatus(exchangeID, userID int, newStatus model.ExchangeStatus) (*model.Exchange, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, errors.New(errors.ErrValidation, "无效的状态")
	}

	exchange, err := s.exchangeRepo.FindByID(exchangeID)
	if err != nil {
		return nil, fmt.Errorf("查询交换请求失败: %w", err)
	}
	if exchange == nil {
		return nil, errors.New(errors.ErrExchangeNotFound, "交换请求不存在")
	}
	if exchange.OwnerID != userID {
		return nil, errors.New(errors.ErrForbidden, "只有书主可以处理该请求")
	}
	if !model.CanTransition(exchange.Status, newStatus) {
		return nil, errors.New(errors.ErrInvalidTransition,
			fmt.Sprintf("不允许从 %s 转换到 %s", exchange.Status, newStatus))
	}

	// 接受前重新确认书籍可用，同一本书不能被第二个请求接受
	if newStatus == model.StatusAccepted {
		book, err := s.bookRepo.FindByID(exchange.BookID)
		if err != nil {
			return nil, fmt.Errorf("查询书籍失败: %w", err)
		}
		if book == nil || !book.Available {
			return nil, errors.New(errors.ErrBookUnavailable, "该书籍当前不可用")
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 带条件的状态更新，防止并发下重复转换
	result, err := tx.Exec(
		`UPDATE exchanges SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		newStatus, exchangeID, exchange.Status)
	if err != nil {
		util.Logger.Error("更新交换状态失败", zap.Error(err), zap.Int("exchange_id", exchangeID))
		return nil, fmt.Errorf("failed to update exchange status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, errors.New(errors.ErrInvalidTransition, "交换状态已变更，请刷新后重试")
	}

	// 接受请求后书籍不再可用
	if newStatus == model.StatusAccepted {
		if _, err := tx.Exec(`UPDATE books SET available = false, updated_at = NOW() WHERE id = ?`,
			exchange.BookID); err != nil {
			util.Logger.Error("更新书籍可用状态失败", zap.Error(err), zap.Int("book_id", exchange.BookID))
			return nil, fmt.Errorf("failed to update book availability: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	exchange.Status = newStatus
	util.Logger.Info("交换状态更新成功",
		zap.Int("exchange_id", exchangeID),
		zap.String("status", string(newStatus)))
	return exchange, nil
}

// CompleteExchange 完成交换，双方参与者都可以操作。
// 只有 Accepted 状态可以完成；状态更新和双方交换计数在同一事务内完成，
// 条件更新保证重复调用不会重复计数
func (s *ExchangeService) CompleteExchange(exchangeID, userID int) (*model.Exchange, error) {
	exchange, err := s.exchangeRepo.FindByID(exchangeID)
	if err != nil {
		return nil, fmt.Errorf("查询交换请求失败: %w", err)
	}
	if exchange == nil {
		return nil, errors.New(errors.ErrExchangeNotFound, "交换请求不存在")
	}
	if !exchange.IsParticipant(userID) {
		return nil, errors.New(errors.ErrNotParticipant, "只有交换参与方可以完成交换")
	}
	if !model.CanTransition(exchange.Status, model.StatusCompleted) {
		return nil, errors.New(errors.ErrInvalidTransition,
			fmt.Sprintf("不允许从 %s 完成交换", exchange.Status))
	}

	tx, err := s.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE exchanges SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		model.StatusCompleted, exchangeID, model.StatusAccepted)
	if err != nil {
		util.Logger.Error("更新交换状态失败", zap.Error(err), zap.Int("exchange_id", exchangeID))
		return nil, fmt.Errorf("failed to update exchange status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// 状态已不是 Accepted，说明交换已完成或被并发修改
		return nil, errors.New(errors.ErrInvalidTransition, "该交换已完成")
	}

	// 双方交换计数 +1
	if _, err := tx.Exec(
		`UPDATE users SET exchange_count = exchange_count + 1 WHERE id IN (?, ?)`,
		exchange.RequesterID, exchange.OwnerID); err != nil {
		util.Logger.Error("更新交换计数失败", zap.Error(err), zap.Int("exchange_id", exchangeID))
		return nil, fmt.Errorf("failed to increment exchange counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	exchange.Status = model.StatusCompleted
	util.Logger.Info("交换完成",
		zap.Int("exchange_id", exchangeID),
		zap.Int("requester_id", exchange.RequesterID),
		zap.Int("owner_id", exchange.OwnerID))
	return exchange, nil
}

type ExchangeServiceInterface interface {
	CreateExchange(requesterID, bookID int, exchangeType string, offeredBookID *int, message string) (*model.Exchange, error)
	GetReceivedExchanges(ownerID int) ([]*model.Exchange, error)
	GetSentExchanges(requesterID int) ([]*model.Exchange, error)
	UpdateStatus(exchangeID, userID int, newStatus model.ExchangeStatus) (*model.Exchange, error)
	CompleteExchange(exchangeID, userID int) (*model.Exchange, error)
}

// 确保 ExchangeService 实现了 ExchangeServiceInterface
var _ ExchangeServiceInterface = (*ExchangeService)(nil)
