package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/util"
	"fmt"
	"time"

	"go.uber.org/zap"

	"golang.org/x/crypto/bcrypt"
)

// verificationTokenTTL 是邮箱验证令牌的有效期
const verificationTokenTTL = 24 * time.Hour

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo     interfaces.UserRepository
	emailService *EmailService
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, emailService *EmailService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// Register 注册新用户，发送验证邮件（邮件失败不影响注册）
func (s *UserService) Register(user *model.User, password string) error {
	existing, err := s.userRepo.FindByEmail(user.Email)
	if err != nil {
		return fmt.Errorf("查找用户失败: %w", err)
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "该邮箱已被注册")
	}

	// 生成密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	// 生成邮箱验证令牌
	token, err := util.GenerateVerificationToken()
	if err != nil {
		return fmt.Errorf("生成验证令牌失败: %w", err)
	}
	expiry := time.Now().Add(verificationTokenTTL)
	user.IsVerified = false
	user.VerificationToken = token
	user.VerificationExpiry = &expiry

	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	// 发送验证邮件，失败只记录日志
	if err := s.emailService.SendVerificationEmail(user.Email, user.Name, token); err != nil {
		util.Logger.Error("发送验证邮件失败", zap.Error(err), zap.String("email", user.Email))
	}

	return nil
}

// Login 用户登录。未验证邮箱的用户返回 ErrNeedsVerification
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("查找用户失败: %w", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "邮箱或密码不正确")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.Logger.Warn("用户登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, errors.New(errors.ErrInvalidCredentials, "邮箱或密码不正确")
	}

	if !user.IsVerified {
		return user, errors.New(errors.ErrNeedsVerification, "请先验证您的邮箱再登录")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// GetUsers 返回除指定用户外的所有用户
func (s *UserService) GetUsers(excludeID int) ([]*model.User, error) {
	return s.userRepo.FindAllExcept(excludeID)
}

// UpdateProfile 更新用户资料中允许修改的字段
func (s *UserService) UpdateProfile(userID int, name, phone, university, program string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.Phone = phone
	}
	if university != "" {
		user.University = university
	}
	if program != "" {
		user.Program = program
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}

// UpdateAvatar 更新用户头像
func (s *UserService) UpdateAvatar(userID int, avatarURL string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	user.AvatarURL = avatarURL
	return s.userRepo.Update(user)
}

// VerifyEmail 通过令牌验证邮箱，成功后发送欢迎邮件
func (s *UserService) VerifyEmail(token string) error {
	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		return fmt.Errorf("查找用户失败: %w", err)
	}
	if user == nil {
		return errors.New(errors.ErrValidation, "验证令牌无效或已过期")
	}
	if user.VerificationExpiry == nil || time.Now().After(*user.VerificationExpiry) {
		util.Logger.Warn("验证令牌已过期", zap.Int("user_id", user.ID))
		return errors.New(errors.ErrValidation, "验证令牌无效或已过期")
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("更新用户验证状态失败: %w", err)
	}

	// 发送欢迎邮件，失败只记录日志
	if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
		util.Logger.Error("发送欢迎邮件失败", zap.Error(err), zap.Int("user_id", user.ID))
	}

	util.Logger.Info("邮箱验证成功", zap.Int("user_id", user.ID))
	return nil
}

// ResendVerification 重新生成验证令牌并发送验证邮件
func (s *UserService) ResendVerification(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("查找用户失败: %w", err)
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	if user.IsVerified {
		return errors.New(errors.ErrValidation, "该邮箱已完成验证")
	}

	token, err := util.GenerateVerificationToken()
	if err != nil {
		return fmt.Errorf("生成验证令牌失败: %w", err)
	}
	expiry := time.Now().Add(verificationTokenTTL)
	user.VerificationToken = token
	user.VerificationExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("更新验证令牌失败: %w", err)
	}

	return s.emailService.SendVerificationEmail(user.Email, user.Name, token)
}

// DeleteAccount 删除用户账户并级联删除其书籍，返回删除的书籍数量
func (s *UserService) DeleteAccount(userID int) (int, error) {
	if _, err := s.GetUserByID(userID); err != nil {
		return 0, err
	}
	return s.userRepo.DeleteWithBooks(userID)
}

type UserServiceInterface interface {
	Register(user *model.User, password string) error
	Login(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetUsers(excludeID int) ([]*model.User, error)
	UpdateProfile(userID int, name, phone, university, program string) (*model.User, error)
	UpdateAvatar(userID int, avatarURL string) error
	VerifyEmail(token string) error
	ResendVerification(email string) error
	DeleteAccount(userID int) (int, error)
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
