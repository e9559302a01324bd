package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/athletelink/athletelink/config"
	"github.com/athletelink/athletelink/models"
)

// Mailer — исходящий почтовый транспорт.
type Mailer interface {
	SendEmail(to []string, subject string, body string) error
}

const verificationCodeSubject = "AthleteLink — код подтверждения"

var verificationCodeTemplate = template.Must(template.New("verification_code").Parse(
	`<p>Ваш код: <b>{{.Code}}</b></p>`))

var eventStatusTemplate = template.Must(template.New("event_status").Parse(
	`<p>Статус события «{{.SportName}}, {{.Address}}» изменился: <b>{{.Status}}</b>.</p>`))

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}

	return nil
}

func renderTemplate(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

// SendVerificationCodeEmail отправляет одноразовый код подтверждения.
func (s *EmailService) SendVerificationCodeEmail(email, code string) error {
	htmlBody, err := renderTemplate(verificationCodeTemplate, struct{ Code string }{Code: code})
	if err != nil {
		return err
	}
	return s.SendEmail([]string{email}, verificationCodeSubject, htmlBody)
}

// SendEventStatusEmail уведомляет участника о смене статуса события.
func (s *EmailService) SendEventStatusEmail(email string, event *models.Event) error {
	sportName := ""
	if event.Sport != nil {
		sportName = event.Sport.Name
	}
	subject := fmt.Sprintf("AthleteLink — событие: %s", event.Status)
	htmlBody, err := renderTemplate(eventStatusTemplate, struct {
		SportName string
		Address   string
		Status    models.EventStatus
	}{
		SportName: sportName,
		Address:   event.Address,
		Status:    event.Status,
	})
	if err != nil {
		return err
	}
	return s.SendEmail([]string{email}, subject, htmlBody)
}
