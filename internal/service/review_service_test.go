package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReviewRepository 是 ReviewRepository 接口的模拟实现
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByExchangeAndReviewer(exchangeID, reviewerID int) (*model.Review, error) {
	args := m.Called(exchangeID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByReviewed(reviewedID int) ([]*model.Review, error) {
	args := m.Called(reviewedID)
	return args.Get(0).([]*model.Review), args.Error(1)
}

// TestCreateReviewGuards 测试发表评价前的各项校验
func TestCreateReviewGuards(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockExchangeRepo := new(MockExchangeRepository)
	service := NewReviewService(mockReviewRepo, mockExchangeRepo, nil)

	completed := &model.Exchange{ID: 1, RequesterID: 1, OwnerID: 2, Status: model.StatusCompleted}
	pending := &model.Exchange{ID: 2, RequesterID: 1, OwnerID: 2, Status: model.StatusPending}

	mockExchangeRepo.On("FindByID", 1).Return(completed, nil)
	mockExchangeRepo.On("FindByID", 2).Return(pending, nil)
	mockExchangeRepo.On("FindByID", 99).Return(nil, nil)

	// 评分范围
	_, err := service.CreateReview(1, 1, 0, "")
	assertAppErrCode(t, err, errors.ErrValidation)
	_, err = service.CreateReview(1, 1, 6, "")
	assertAppErrCode(t, err, errors.ErrValidation)

	// 交换不存在
	_, err = service.CreateReview(1, 99, 5, "")
	assertAppErrCode(t, err, errors.ErrExchangeNotFound)

	// 只能评价已完成的交换
	_, err = service.CreateReview(1, 2, 5, "")
	assertAppErrCode(t, err, errors.ErrExchangeNotCompleted)

	// 非参与方不能评价
	_, err = service.CreateReview(5, 1, 5, "")
	assertAppErrCode(t, err, errors.ErrNotParticipant)

	// 同一交换不能重复评价
	mockReviewRepo.On("FindByExchangeAndReviewer", 1, 1).Return(&model.Review{ID: 7}, nil)
	_, err = service.CreateReview(1, 1, 5, "很好")
	assertAppErrCode(t, err, errors.ErrAlreadyReviewed)
}

// TestCreateReviewCommentLength 评论长度上限
func TestCreateReviewCommentLength(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockExchangeRepo := new(MockExchangeRepository)
	service := NewReviewService(mockReviewRepo, mockExchangeRepo, nil)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}

	_, err := service.CreateReview(1, 1, 5, string(long))
	assertAppErrCode(t, err, errors.ErrValidation)
}

// TestGetUserReviews 测试获取用户收到的评价
func TestGetUserReviews(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockExchangeRepo := new(MockExchangeRepository)
	service := NewReviewService(mockReviewRepo, mockExchangeRepo, nil)

	expected := []*model.Review{{ID: 1, ReviewedID: 2, Rating: 5}}
	mockReviewRepo.On("FindByReviewed", 2).Return(expected, nil)

	reviews, err := service.GetUserReviews(2)
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)
	mockReviewRepo.AssertExpectations(t)
}
