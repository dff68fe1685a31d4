package mailer

import (
	"bufio"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
)

func sampleActivation() *entity.Activation {
	activatedAt := time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)
	return &entity.Activation{
		Provider:          provider.Stripe,
		ProviderPaymentID: "pi_123",
		LicensePlate:      "AB123C",
		TierID:            "1hr",
		TierName:          "1 Hour",
		AmountCents:       850,
		Currency:          "CAD",
		ActivatedAt:       activatedAt,
		ExpiresAt:         activatedAt.Add(time.Hour),
	}
}

func TestBuildReceiptCarriesPurchaseDetails(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", From: "receipts@parking.example.com", Brand: "Parking Payment BC"})

	raw, err := m.BuildReceipt("jane@example.com", sampleActivation())
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	assert.Equal(t, "receipts@parking.example.com", msg.Header.Get("From"))
	assert.Equal(t, "jane@example.com", msg.Header.Get("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Parking Payment Receipt - License Plate: AB123C", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])
	parts := map[string]string{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		ct, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		parts[ct] = string(body)
	}

	require.Contains(t, parts, "text/plain")
	require.Contains(t, parts, "text/html")
	for _, body := range parts {
		assert.Contains(t, body, "AB123C")
		assert.Contains(t, body, "1 Hour")
		assert.Contains(t, body, "$8.50")
		assert.Contains(t, body, "pi_123")
		assert.Contains(t, body, "Card")
	}
	assert.Contains(t, parts["text/html"], "Parking Payment BC")
}

func TestBuildReceiptEscapesHTML(t *testing.T) {
	m := NewSMTPMailer(Config{From: "receipts@parking.example.com"})
	activation := sampleActivation()
	activation.LicensePlate = "<B>"

	raw, err := m.BuildReceipt("jane@example.com", activation)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "&lt;B&gt;")
}

func TestPaymentMethod(t *testing.T) {
	assert.Equal(t, "PayPal", paymentMethod(provider.PayPal))
	assert.Equal(t, "Card", paymentMethod(provider.Stripe))
	assert.Equal(t, "other", paymentMethod("other"))
}

func TestSendReceiptRejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", From: "receipts@parking.example.com"})
	err := m.SendReceipt(context.Background(), "  ", sampleActivation())
	require.Error(t, err)
}

func TestBuildReceiptRejectsInvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(Config{From: "receipts@parking.example.com"})

	for _, to := range []string{"bob", "jane@example.com\r\nBcc: attacker@example.com", "a@b.com, c@d.com"} {
		_, err := m.BuildReceipt(to, sampleActivation())
		assert.Error(t, err, to)
	}
}

func TestSendReceiptRejectsInvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "127.0.0.1", Port: "1", From: "receipts@parking.example.com", Timeout: time.Second})
	err := m.SendReceipt(context.Background(), "not-an-email", sampleActivation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid receipt recipient")
}

func TestBuildReceiptUsesBareRecipientAddress(t *testing.T) {
	m := NewSMTPMailer(Config{From: "receipts@parking.example.com"})

	raw, err := m.BuildReceipt("Jane Doe <jane@example.com>", sampleActivation())
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", msg.Header.Get("To"))
}

// fakeSMTPServer speaks just enough SMTP for a plain, unauthenticated delivery.
func fakeSMTPServer(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	delivered := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
		write("220 localhost ESMTP")

		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					delivered <- data.String()
					write("250 OK")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				write("250 OK")
			case cmd == "DATA":
				inData = true
				write("354 End data with <CR><LF>.<CR><LF>")
			case cmd == "QUIT":
				write("221 Bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	return ln.Addr().String(), delivered
}

func TestSendReceiptDeliversOverSMTP(t *testing.T) {
	addr, delivered := fakeSMTPServer(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	m := NewSMTPMailer(Config{Host: host, Port: port, From: "receipts@parking.example.com", Timeout: 5 * time.Second})
	require.NoError(t, m.SendReceipt(context.Background(), "jane@example.com", sampleActivation()))

	select {
	case body := <-delivered:
		assert.Contains(t, body, "License Plate: AB123C")
	case <-time.After(5 * time.Second):
		t.Fatal("expected message to be delivered")
	}
}
