package util

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateVerificationToken 生成用于邮箱验证的随机令牌（URL 安全）
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
