package interfaces

import "bookshare-backend/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByVerificationToken(token string) (*model.User, error)
	Update(user *model.User) error
	// DeleteWithBooks 删除用户并级联删除其发布的书籍，返回删除的书籍数量
	DeleteWithBooks(id int) (int, error)
	FindAllExcept(excludeID int) ([]*model.User, error)
}
