package service

import (
	"bookshare-backend/config"
	"bookshare-backend/internal/util"
	"crypto/tls"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailService 负责发送系统邮件
type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	frontendURL string
	enabled     bool
}

// NewEmailService 创建一个新的 EmailService 实例
func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:    config.AppConfig.SMTPHost,
		smtpPort:    config.AppConfig.SMTPPort,
		username:    config.AppConfig.SMTPUsername,
		password:    config.AppConfig.SMTPPassword,
		frontendURL: config.AppConfig.FrontendURL,
		enabled:     config.AppConfig.SMTPUsername != "" && config.AppConfig.SMTPPassword != "",
	}
}

// SendVerificationEmail 发送邮箱验证邮件
func (s *EmailService) SendVerificationEmail(email, name, token string) error {
	verificationLink := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, token)

	subject := "验证您的 BookShare 账户"
	body := fmt.Sprintf(`
	<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
		<h2>亲爱的 %s：</h2>
		<p>感谢您注册 BookShare。请点击下面的按钮激活您的账户：</p>
		<p style="text-align: center;">
			<a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 4px;">验证我的账户</a>
		</p>
		<p>或者，您可以将以下链接复制并粘贴到您的浏览器地址栏：</p>
		<p>%s</p>
		<p>此链接将在24小时后过期。</p>
	</div>`, name, verificationLink, verificationLink)

	s.sendEmailAsync(email, subject, body)
	return nil
}

// SendWelcomeEmail 发送账户激活后的欢迎邮件
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	subject := "欢迎加入 BookShare！"
	body := fmt.Sprintf(`
	<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
		<h2>亲爱的 %s：</h2>
		<p>您的账户已验证成功。现在您可以发布书籍、发起交换或借阅请求，并与其他同学聊天。</p>
		<p><a href="%s">前往 BookShare</a></p>
	</div>`, name, s.frontendURL)

	s.sendEmailAsync(email, subject, body)
	return nil
}

// sendEmailAsync 异步发送邮件，失败只记录日志
func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	if !s.enabled {
		util.Logger.Warn("SMTP 未配置，跳过邮件发送", zap.String("to", to))
		return nil
	}

	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
