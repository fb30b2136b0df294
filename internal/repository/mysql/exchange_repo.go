package mysql

import (
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// exchangeRepository 实现了 ExchangeRepository 接口
type exchangeRepository struct {
	db *sql.DB
}

// NewExchangeRepository 创建一个新的 exchangeRepository 实例
func NewExchangeRepository(db *sql.DB) *exchangeRepository {
	return &exchangeRepository{db}
}

// Create 创建一个新的交换请求
func (r *exchangeRepository) Create(exchange *model.Exchange) error {
	query := `INSERT INTO exchanges (requester_id, owner_id, book_id, exchange_type,
              offered_book_id, status, message, delivery_date, return_date)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, exchange.RequesterID, exchange.OwnerID,
		exchange.BookID, exchange.Type, exchange.OfferedBookID, exchange.Status,
		exchange.Message, exchange.DeliveryDate, exchange.ReturnDate)
	if err != nil {
		util.Logger.Error("创建交换请求失败", zap.Error(err),
			zap.Int("requester_id", exchange.RequesterID),
			zap.Int("book_id", exchange.BookID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	exchange.ID = int(id)
	util.Logger.Info("交换请求创建成功", zap.Int("exchange_id", exchange.ID))
	return nil
}

// FindByID 通过ID查找交换请求
func (r *exchangeRepository) FindByID(id int) (*model.Exchange, error) {
	query := `SELECT id, requester_id, owner_id, book_id, exchange_type, offered_book_id,
                     status, message, delivery_date, return_date, created_at, updated_at
              FROM exchanges WHERE id = ?`
	var exchange model.Exchange
	var offeredBookID sql.NullInt64
	var message sql.NullString
	var deliveryDate, returnDate sql.NullTime
	err := r.db.QueryRow(query, id).Scan(
		&exchange.ID, &exchange.RequesterID, &exchange.OwnerID, &exchange.BookID,
		&exchange.Type, &offeredBookID, &exchange.Status, &message,
		&deliveryDate, &returnDate, &exchange.CreatedAt, &exchange.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if offeredBookID.Valid {
		v := int(offeredBookID.Int64)
		exchange.OfferedBookID = &v
	}
	exchange.Message = message.String
	if deliveryDate.Valid {
		exchange.DeliveryDate = &deliveryDate.Time
	}
	if returnDate.Valid {
		exchange.ReturnDate = &returnDate.Time
	}
	return &exchange, nil
}

// FindByOwner 返回用户收到的交换请求，按创建时间降序
func (r *exchangeRepository) FindByOwner(ownerID int) ([]*model.Exchange, error) {
	return r.findWithProjections(`e.owner_id = ?`, ownerID)
}

// FindByRequester 返回用户发出的交换请求，按创建时间降序
func (r *exchangeRepository) FindByRequester(requesterID int) ([]*model.Exchange, error) {
	return r.findWithProjections(`e.requester_id = ?`, requesterID)
}

// findWithProjections 查询交换请求并附带双方与书籍的轻量级信息
func (r *exchangeRepository) findWithProjections(condition string, arg int) ([]*model.Exchange, error) {
	query := `SELECT e.id, e.requester_id, e.owner_id, e.book_id, e.exchange_type,
                     e.offered_book_id, e.status, e.message, e.delivery_date, e.return_date,
                     e.created_at, e.updated_at,
                     req.name, req.university, req.rating, req.avatar_url,
                     own.name, own.university, own.rating, own.avatar_url,
                     b.title, b.author, b.photo_url,
                     ob.title, ob.author, ob.photo_url
              FROM exchanges e
              JOIN users req ON req.id = e.requester_id
              JOIN users own ON own.id = e.owner_id
              JOIN books b ON b.id = e.book_id
              LEFT JOIN books ob ON ob.id = e.offered_book_id
              WHERE ` + condition + `
              ORDER BY e.created_at DESC`
	rows, err := r.db.Query(query, arg)
	if err != nil {
		util.Logger.Error("查询交换请求失败", zap.Error(err))
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []*model.Exchange
	for rows.Next() {
		var e model.Exchange
		var offeredBookID sql.NullInt64
		var message sql.NullString
		var deliveryDate, returnDate sql.NullTime
		var requester, owner model.User
		var book model.Book
		var obTitle, obAuthor, obPhoto sql.NullString
		err := rows.Scan(
			&e.ID, &e.RequesterID, &e.OwnerID, &e.BookID, &e.Type,
			&offeredBookID, &e.Status, &message, &deliveryDate, &returnDate,
			&e.CreatedAt, &e.UpdatedAt,
			&requester.Name, &requester.University, &requester.Rating, &requester.AvatarURL,
			&owner.Name, &owner.University, &owner.Rating, &owner.AvatarURL,
			&book.Title, &book.Author, &book.PhotoURL,
			&obTitle, &obAuthor, &obPhoto,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		e.Message = message.String
		if deliveryDate.Valid {
			e.DeliveryDate = &deliveryDate.Time
		}
		if returnDate.Valid {
			e.ReturnDate = &returnDate.Time
		}
		requester.ID = e.RequesterID
		owner.ID = e.OwnerID
		book.ID = e.BookID
		e.Requester = &requester
		e.Owner = &owner
		e.Book = &book
		if offeredBookID.Valid {
			v := int(offeredBookID.Int64)
			e.OfferedBookID = &v
			e.OfferedBook = &model.Book{
				ID:       v,
				Title:    obTitle.String,
				Author:   obAuthor.String,
				PhotoURL: obPhoto.String,
			}
		}
		exchanges = append(exchanges, &e)
	}
	return exchanges, rows.Err()
}
