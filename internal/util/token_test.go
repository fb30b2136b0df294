package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerateVerificationToken 令牌为 URL 安全格式且每次不同
func TestGenerateVerificationToken(t *testing.T) {
	first, err := GenerateVerificationToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "=")

	second, err := GenerateVerificationToken()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

// TestGenerateToken JWT 生成后可以解出原始用户ID
func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, userID)

	_, err = ValidateToken("")
	assert.Error(t, err)
	_, err = ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

// TestGenerateUniqueFilename 保留扩展名且文件名唯一
func TestGenerateUniqueFilename(t *testing.T) {
	first := GenerateUniqueFilename("portada.jpg")
	second := GenerateUniqueFilename("portada.jpg")

	assert.Equal(t, ".jpg", filepath.Ext(first))
	assert.NotEqual(t, first, second)
}
