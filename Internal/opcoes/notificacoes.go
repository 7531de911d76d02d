package opcoes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"time"
)

// ============================================================================
// NOTIFICACOES - console, Telegram e email
// ============================================================================

// ConsoleNotifier just logs, the default channel in development.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Enviar(assunto, mensagem string) error {
	log.Printf("📣 %s\n%s", assunto, mensagem)
	return nil
}

// TelegramNotifier posts to a chat via the Bot API. Token and chat id come
// from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
type TelegramNotifier struct {
	Token  string
	ChatID string
	Client *http.Client
}

func NewTelegramNotifier() *TelegramNotifier {
	return &TelegramNotifier{
		Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Enviar(assunto, mensagem string) error {
	if t.Token == "" || t.ChatID == "" {
		return fmt.Errorf("telegram não configurado")
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  t.ChatID,
		"text":                     fmt.Sprintf("<b>%s</b>\n%s", assunto, mensagem),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.Token)
	resp, err := t.Client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: status %d", resp.StatusCode)
	}
	return nil
}

// EmailNotifier delivers over SMTP with STARTTLS. Credentials come from
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and ALERT_EMAIL_TO.
type EmailNotifier struct {
	Host     string
	Port     string
	User     string
	Password string
	Destino  string
}

func NewEmailNotifier() *EmailNotifier {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &EmailNotifier{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		Destino:  os.Getenv("ALERT_EMAIL_TO"),
	}
}

func (e *EmailNotifier) Enviar(assunto, mensagem string) error {
	if e.Host == "" || e.User == "" || e.Destino == "" {
		return fmt.Errorf("smtp não configurado")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		e.User, e.Destino, assunto, mensagem)

	auth := smtp.PlainAuth("", e.User, e.Password, e.Host)
	addr := e.Host + ":" + e.Port

	if err := smtp.SendMail(addr, auth, e.User, []string{e.Destino}, []byte(body)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// MultiNotifier fans out to every enabled channel. One failing channel
// does not stop the others; the first error is reported.
type MultiNotifier struct {
	Canais []Notifier
}

func (m *MultiNotifier) Enviar(assunto, mensagem string) error {
	var first error
	for _, canal := range m.Canais {
		if err := canal.Enviar(assunto, mensagem); err != nil && first == nil {
			first = err
		}
	}
	return first
}
