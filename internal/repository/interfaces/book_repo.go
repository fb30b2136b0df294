package interfaces

import "bookshare-backend/internal/model"

// BookFilter 描述书籍列表查询的过滤条件
type BookFilter struct {
	Search    string
	Subject   string
	Condition string
	Page      int
	PageSize  int
}

// BookRepository 接口定义了书籍仓库应该实现的方法
type BookRepository interface {
	Create(book *model.Book) error
	FindByID(id int) (*model.Book, error)
	// FindAvailable 返回可用书籍的分页列表和总数
	FindAvailable(filter BookFilter) ([]*model.Book, int, error)
	FindByOwner(ownerID int) ([]*model.Book, error)
	Update(book *model.Book) error
	Delete(id int) error
}
