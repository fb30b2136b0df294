package user

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		University string `json:"university"`
		Program    string `json:"program"`
		Phone      string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	// 逐项校验，所有失败项一次性返回
	var details []string
	if len(strings.TrimSpace(registerData.Name)) < 3 {
		details = append(details, "名字至少需要3个字符")
	}
	if !emailPattern.MatchString(registerData.Email) {
		details = append(details, "邮箱格式不正确")
	}
	if len(registerData.Password) < 6 {
		details = append(details, "密码至少需要6个字符")
	}
	if len(details) > 0 {
		errors.HandleError(c, errors.WithDetails(errors.ErrValidation, "注册信息校验失败", details))
		return
	}

	user := &model.User{
		Name:       strings.TrimSpace(registerData.Name),
		Email:      strings.ToLower(strings.TrimSpace(registerData.Email)),
		University: registerData.University,
		Program:    registerData.Program,
		Phone:      registerData.Phone,
	}

	if err := h.userService.Register(user, registerData.Password); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("注册失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注册失败", err))
		return
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	errors.HandleCreated(c, gin.H{
		"token": token,
		"user":  user,
	}, "注册成功，请查收验证邮件")
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.Login(loginData.Email, loginData.Password)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			// 未验证邮箱的用户收到 403，并附带重发验证所需的信息
			if appErr.Code == errors.ErrNeedsVerification && user != nil {
				errors.HandleErrorExtra(c, appErr, gin.H{
					"needsVerification": true,
					"email":             user.Email,
				})
				return
			}
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "登录失败", err))
		return
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  user,
	}, "登录成功")
}

// VerifyEmail 处理邮箱验证
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "缺少验证令牌"))
		return
	}

	if err := h.userService.VerifyEmail(token); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "验证邮箱失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "邮箱验证成功")
}

// ResendVerification 重新发送验证邮件
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var requestData struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的邮箱格式", err))
		return
	}

	if err := h.userService.ResendVerification(requestData.Email); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "重发验证邮件失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "验证邮件已重新发送")
}

// DeleteAccount 注销账户并级联删除名下书籍
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetInt("user_id")

	booksDeleted, err := h.userService.DeleteAccount(userID)
	if err != nil {
		util.Logger.Error("注销账户失败", zap.Error(err), zap.Int("user_id", userID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注销账户失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"booksDeleted": booksDeleted,
	}, "账户已成功注销")
}
