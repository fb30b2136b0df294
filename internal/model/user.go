package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID                 int        `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"` // 密码哈希不应在JSON中暴露
	University         string     `json:"university"`
	Program            string     `json:"program"`
	Phone              string     `json:"phone"`
	AvatarURL          string     `json:"avatar_url"`
	Rating             float64    `json:"rating"`
	ExchangeCount      int        `json:"exchange_count"`
	IsVerified         bool       `json:"is_verified"`
	VerificationToken  string     `json:"-"`
	VerificationExpiry *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UserProfile 是附加在消息和评价上的轻量级用户信息
type UserProfile struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// PublicProfile 返回用户的轻量级信息
func (u *User) PublicProfile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}
