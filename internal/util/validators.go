package util

import (
	"bookshare-backend/internal/model"

	"github.com/go-playground/validator/v10"
)

// ValidateBookCondition 验证书籍状态是否为合法枚举值
func ValidateBookCondition(fl validator.FieldLevel) bool {
	return model.IsValidCondition(fl.Field().String())
}

// ValidateOfferType 验证提供方式是否为合法枚举值
func ValidateOfferType(fl validator.FieldLevel) bool {
	return model.IsValidOfferType(fl.Field().String())
}
