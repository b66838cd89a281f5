package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"
)

type IMailService interface {
	SendExportReady(to, projectTitle, link string) error
	SendPasswordResetCode(to, code string) error
}

// SMTPConfig holds the SMTP account and branding used in outgoing mail.
type SMTPConfig struct {
	Host       string
	Port       int // 587 for STARTTLS, 465 with UseSSL
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool
	RequireTLS bool

	AppName    string
	AppBaseURL string
}

type EmailData struct {
	Title     string
	Intro     string
	Code      string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *htmltemplate.Template
	textTpl *texttemplate.Template
	logger  *zap.Logger
}

func NewSMTPMailService(cfg SMTPConfig, logger *zap.Logger) (IMailService, error) {
	htmlTpl, err := htmltemplate.New("mailHTML").Parse(baseHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse html mail template: %w", err)
	}
	textTpl, err := texttemplate.New("mailText").Parse(plainTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse text mail template: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &smtpMailService{
		cfg:     cfg,
		htmlTpl: htmlTpl,
		textTpl: textTpl,
		logger:  logger,
	}, nil
}

func (s *smtpMailService) SendExportReady(to, projectTitle, link string) error {
	subject := fmt.Sprintf("Your dossier \"%s\" is ready to export", projectTitle)
	html, text, err := s.renderEmail(EmailData{
		Title:     subject,
		Intro:     "Every module of the dossier is complete and validated. You can now review and export it.",
		ButtonURL: link,
		ButtonTxt: "Open the dossier",
		AppName:   s.cfg.AppName,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

func (s *smtpMailService) SendPasswordResetCode(to, code string) error {
	subject := "Your password reset code"
	html, text, err := s.renderEmail(EmailData{
		Title:   subject,
		Intro:   "Use the code below to choose a new password. It expires in 15 minutes. If you did not ask for it, ignore this email.",
		Code:    code,
		AppName: s.cfg.AppName,
		Year:    time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:24px;background:#f4f5f7;font-family:Helvetica,Arial,sans-serif;color:#1f2933">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">
    <h1 style="font-size:20px;margin:0 0 16px">{{.Title}}</h1>
    <p style="line-height:1.5">{{.Intro}}</p>
    {{if .Code}}<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{.Code}}</p>{{end}}
    {{if .ButtonURL}}
    <p><a href="{{.ButtonURL}}" style="display:inline-block;padding:12px 20px;background:#1d4ed8;color:#ffffff;border-radius:6px;text-decoration:none">{{.ButtonTxt}}</a></p>
    <p style="font-size:12px;color:#52606d">If the button does not work, open {{.ButtonURL}}</p>
    {{end}}
    <p style="font-size:12px;color:#9aa5b1">&copy; {{.Year}} {{.AppName}}</p>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .Code}}
Code: {{.Code}}
{{end}}{{if .ButtonURL}}
Open this link:
{{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer
	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	msg := s.buildMessage(to, subject, htmlBody, textBody)
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if s.cfg.UseSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	s.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("UTF-8", name), s.cfg.From)
}

// logMailService stands in when no SMTP host is configured.
type logMailService struct {
	logger *zap.Logger
}

func NewLogMailService(logger *zap.Logger) IMailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logMailService{logger: logger}
}

func (l *logMailService) SendExportReady(to, projectTitle, link string) error {
	l.logger.Info("smtp not configured, export mail skipped",
		zap.String("to", to), zap.String("project", projectTitle), zap.String("link", link))
	return nil
}

func (l *logMailService) SendPasswordResetCode(to, code string) error {
	l.logger.Info("smtp not configured, reset code mail skipped", zap.String("to", to))
	return nil
}
