package mysql

import (
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, name, email, password_hash, university, program, phone, avatar_url,
              rating, exchange_count, is_verified, verification_token, verification_expiry,
              created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var token sql.NullString
	var expiry sql.NullTime
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.University,
		&user.Program, &user.Phone, &user.AvatarURL, &user.Rating, &user.ExchangeCount,
		&user.IsVerified, &token, &expiry, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	user.VerificationToken = token.String
	if expiry.Valid {
		user.VerificationExpiry = &expiry.Time
	}
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, university, program, phone,
              avatar_url, is_verified, verification_token, verification_expiry)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, user.Name, user.Email, user.PasswordHash,
		user.University, user.Program, user.Phone, user.AvatarURL,
		user.IsVerified, user.VerificationToken, user.VerificationExpiry)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, userColumns)
	return scanUser(r.db.QueryRow(query, id))
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = ?`, userColumns)
	return scanUser(r.db.QueryRow(query, email))
}

// FindByVerificationToken 通过验证令牌查找用户
func (r *userRepository) FindByVerificationToken(token string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE verification_token = ?`, userColumns)
	return scanUser(r.db.QueryRow(query, token))
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET name = ?, phone = ?, university = ?, program = ?, avatar_url = ?,
		    rating = ?, exchange_count = ?, is_verified = ?,
		    verification_token = ?, verification_expiry = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Phone, user.University, user.Program, user.AvatarURL,
		user.Rating, user.ExchangeCount, user.IsVerified,
		user.VerificationToken, user.VerificationExpiry, time.Now(), user.ID)
	return err
}

// DeleteWithBooks 删除用户并级联删除其发布的书籍
func (r *userRepository) DeleteWithBooks(id int) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM books WHERE owner_id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户书籍失败", zap.Error(err), zap.Int("user_id", id))
		return 0, fmt.Errorf("failed to delete user books: %w", err)
	}
	booksDeleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	util.Logger.Info("用户删除成功",
		zap.Int("user_id", id),
		zap.Int64("books_deleted", booksDeleted))
	return int(booksDeleted), nil
}

// FindAllExcept 返回除指定用户外的所有用户，按注册时间降序
func (r *userRepository) FindAllExcept(excludeID int) ([]*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id != ? ORDER BY created_at DESC`, userColumns)
	rows, err := r.db.Query(query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		var token sql.NullString
		var expiry sql.NullTime
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.University,
			&user.Program, &user.Phone, &user.AvatarURL, &user.Rating, &user.ExchangeCount,
			&user.IsVerified, &token, &expiry, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.VerificationToken = token.String
		if expiry.Valid {
			user.VerificationExpiry = &expiry.Time
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
