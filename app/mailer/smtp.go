package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
)

const receiptDateLayout = "January 2, 2006 at 3:04 PM MST"

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Brand    string
	Timeout  time.Duration
}

type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Brand == "" {
		cfg.Brand = "Parking Payment"
	}
	return &SMTPMailer{cfg: cfg}
}

type receiptData struct {
	Brand         string
	LicensePlate  string
	Duration      string
	Amount        string
	Currency      string
	PaymentDate   string
	ExpiresAt     string
	TransactionID string
	PaymentMethod string
}

func (m *SMTPMailer) SendReceipt(ctx context.Context, to string, activation *entity.Activation) error {
	to, err := recipientAddress(to)
	if err != nil {
		return err
	}
	msg, err := m.BuildReceipt(to, activation)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	return m.send(ctx, to, msg)
}

// BuildReceipt renders the full MIME message, headers included.
func (m *SMTPMailer) BuildReceipt(to string, activation *entity.Activation) ([]byte, error) {
	to, err := recipientAddress(to)
	if err != nil {
		return nil, err
	}

	data := receiptData{
		Brand:         m.cfg.Brand,
		LicensePlate:  activation.LicensePlate,
		Duration:      activation.TierName,
		Amount:        activation.Amount(),
		Currency:      activation.Currency,
		PaymentDate:   activation.ActivatedAt.Format(receiptDateLayout),
		ExpiresAt:     activation.ExpiresAt.Format(receiptDateLayout),
		TransactionID: activation.ProviderPaymentID,
		PaymentMethod: paymentMethod(activation.Provider),
	}

	var textBody, htmlBody bytes.Buffer
	if err := receiptText.Execute(&textBody, data); err != nil {
		return nil, fmt.Errorf("render text receipt: %w", err)
	}
	if err := receiptHTML.Execute(&htmlBody, data); err != nil {
		return nil, fmt.Errorf("render html receipt: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writePart(writer, "text/plain; charset=UTF-8", textBody.Bytes()); err != nil {
		return nil, err
	}
	if err := writePart(writer, "text/html; charset=UTF-8", htmlBody.Bytes()); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	subject := "Parking Payment Receipt - License Plate: " + activation.LicensePlate

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", activation.ActivatedAt.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@%s>\r\n", uuid.NewString(), messageIDHost(m.cfg.From))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

// recipientAddress returns the bare addr-spec of a single RFC 5322 address.
func recipientAddress(to string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", errors.New("receipt recipient is empty")
	}
	if strings.ContainsAny(to, "\r\n") {
		return "", errors.New("receipt recipient contains a line break")
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return "", fmt.Errorf("invalid receipt recipient %q: %w", to, err)
	}
	return addr.Address, nil
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" && m.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	return client.Quit()
}

func writePart(writer *multipart.Writer, contentType string, content []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "8bit")
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(content)
	return err
}

func paymentMethod(providerName string) string {
	switch providerName {
	case provider.PayPal:
		return "PayPal"
	case provider.Stripe:
		return "Card"
	default:
		return providerName
	}
}

func messageIDHost(from string) string {
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		return strings.Trim(from[at+1:], "> ")
	}
	return "localhost"
}
