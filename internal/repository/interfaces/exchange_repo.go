package interfaces

import "bookshare-backend/internal/model"

// ExchangeRepository 接口定义了交换请求仓库应该实现的方法
type ExchangeRepository interface {
	Create(exchange *model.Exchange) error
	FindByID(id int) (*model.Exchange, error)
	FindByOwner(ownerID int) ([]*model.Exchange, error)
	FindByRequester(requesterID int) ([]*model.Exchange, error)
}
