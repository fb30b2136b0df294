package mysql

import (
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// bookRepository 实现了 BookRepository 接口
type bookRepository struct {
	db *sql.DB
}

// NewBookRepository 创建一个新的 bookRepository 实例
func NewBookRepository(db *sql.DB) *bookRepository {
	return &bookRepository{db}
}

// Create 创建一本新书
func (r *bookRepository) Create(book *model.Book) error {
	query := `INSERT INTO books (title, author, subject, isbn, publisher, edition,
              book_condition, description, photo_url, owner_id, available, offer_type)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, book.Title, book.Author, book.Subject,
		book.ISBN, book.Publisher, book.Edition, book.Condition,
		book.Description, book.PhotoURL, book.OwnerID, book.Available, book.OfferType)
	if err != nil {
		util.Logger.Error("创建书籍失败", zap.Error(err), zap.String("title", book.Title))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	book.ID = int(id)
	util.Logger.Info("书籍创建成功", zap.Int("book_id", book.ID))
	return nil
}

// FindByID 通过ID查找书籍，附带书主信息
func (r *bookRepository) FindByID(id int) (*model.Book, error) {
	query := `SELECT b.id, b.title, b.author, b.subject, b.isbn, b.publisher, b.edition,
                     b.book_condition, b.description, b.photo_url, b.owner_id, b.available,
                     b.offer_type, b.created_at, b.updated_at,
                     u.id, u.name, u.email, u.university, u.program, u.phone,
                     u.avatar_url, u.rating, u.exchange_count
              FROM books b
              JOIN users u ON u.id = b.owner_id
              WHERE b.id = ?`
	var book model.Book
	var owner model.User
	err := r.db.QueryRow(query, id).Scan(
		&book.ID, &book.Title, &book.Author, &book.Subject, &book.ISBN,
		&book.Publisher, &book.Edition, &book.Condition, &book.Description,
		&book.PhotoURL, &book.OwnerID, &book.Available, &book.OfferType,
		&book.CreatedAt, &book.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Email, &owner.University, &owner.Program,
		&owner.Phone, &owner.AvatarURL, &owner.Rating, &owner.ExchangeCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	book.Owner = &owner
	return &book, nil
}

// FindAvailable 返回可用书籍的分页列表和总数
func (r *bookRepository) FindAvailable(filter interfaces.BookFilter) ([]*model.Book, int, error) {
	where := `WHERE b.available = true`
	args := []interface{}{}

	if filter.Search != "" {
		where += ` AND (b.title LIKE ? OR b.author LIKE ? OR b.description LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Subject != "" {
		where += ` AND b.subject LIKE ?`
		args = append(args, "%"+filter.Subject+"%")
	}
	if filter.Condition != "" {
		where += ` AND b.book_condition = ?`
		args = append(args, filter.Condition)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM books b ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		util.Logger.Error("统计书籍数量失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := `SELECT b.id, b.title, b.author, b.subject, b.isbn, b.publisher, b.edition,
                     b.book_condition, b.description, b.photo_url, b.owner_id, b.available,
                     b.offer_type, b.created_at, b.updated_at,
                     u.id, u.name, u.university, u.rating
              FROM books b
              JOIN users u ON u.id = b.owner_id ` + where + `
              ORDER BY b.created_at DESC
              LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询书籍列表失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		var book model.Book
		var owner model.User
		err := rows.Scan(
			&book.ID, &book.Title, &book.Author, &book.Subject, &book.ISBN,
			&book.Publisher, &book.Edition, &book.Condition, &book.Description,
			&book.PhotoURL, &book.OwnerID, &book.Available, &book.OfferType,
			&book.CreatedAt, &book.UpdatedAt,
			&owner.ID, &owner.Name, &owner.University, &owner.Rating,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		book.Owner = &owner
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, total, nil
}

// FindByOwner 返回用户发布的书籍，按发布时间降序
func (r *bookRepository) FindByOwner(ownerID int) ([]*model.Book, error) {
	query := `SELECT id, title, author, subject, isbn, publisher, edition,
                     book_condition, description, photo_url, owner_id, available,
                     offer_type, created_at, updated_at
              FROM books WHERE owner_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		var book model.Book
		err := rows.Scan(
			&book.ID, &book.Title, &book.Author, &book.Subject, &book.ISBN,
			&book.Publisher, &book.Edition, &book.Condition, &book.Description,
			&book.PhotoURL, &book.OwnerID, &book.Available, &book.OfferType,
			&book.CreatedAt, &book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &book)
	}
	return books, rows.Err()
}

// Update 更新书籍信息
func (r *bookRepository) Update(book *model.Book) error {
	_, err := r.db.Exec(`
		UPDATE books
		SET title = ?, author = ?, subject = ?, isbn = ?, publisher = ?, edition = ?,
		    book_condition = ?, description = ?, photo_url = ?, available = ?,
		    offer_type = ?, updated_at = ?
		WHERE id = ?`,
		book.Title, book.Author, book.Subject, book.ISBN, book.Publisher,
		book.Edition, book.Condition, book.Description, book.PhotoURL,
		book.Available, book.OfferType, time.Now(), book.ID)
	return err
}

// Delete 删除书籍
func (r *bookRepository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除书籍失败", zap.Error(err), zap.Int("book_id", id))
		return err
	}
	util.Logger.Info("书籍删除成功", zap.Int("book_id", id))
	return nil
}
