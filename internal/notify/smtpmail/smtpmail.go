// Package smtpmail delivers alert email directly over SMTP, for deployments
// without a transactional email API.
package smtpmail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/Adityad84/neural-track/internal/notify"
)

// Sender delivers messages through a single SMTP account.
type Sender struct {
	host     string
	port     int
	from     string
	password string
	to       string

	// send is smtp.SendMail, swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates an SMTP sender authenticating as the from address.
func New(host string, port int, from, password, to string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		to:       to,
		send:     smtp.SendMail,
	}
}

// Name identifies the channel in logs and metrics.
func (s *Sender) Name() string { return "smtp" }

// Send delivers one email. net/smtp has no context support; the ctx is
// checked before dialing, and a slow send only delays the background
// dispatch worker, never an ingestion caller.
func (s *Sender) Send(ctx context.Context, msg *notify.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	data, err := buildMIME(s.from, s.to, msg)
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	if err := s.send(addr, auth, s.from, []string{s.to}, data); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", addr, err)
	}
	return nil
}

// buildMIME renders a multipart/mixed message with an HTML body and an
// optional base64 attachment part.
func buildMIME(from, to string, msg *notify.Message) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	buf.WriteString("\r\n")

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", `text/html; charset="utf-8"`)
	body, err := w.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("create body part: %w", err)
	}
	if _, err := body.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}

	if msg.Attachment != nil {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", "application/octet-stream")
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", msg.Attachment.Filename))
		att, err := w.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		if err := writeWrapped(att, msg.Attachment.Content); err != nil {
			return nil, fmt.Errorf("write attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), nil
}

// writeWrapped emits base64 content in 76-column lines per RFC 2045.
func writeWrapped(w io.Writer, content string) error {
	const lineLen = 76
	for len(content) > 0 {
		n := min(lineLen, len(content))
		if _, err := w.Write([]byte(content[:n] + "\r\n")); err != nil {
			return err
		}
		content = content[n:]
	}
	return nil
}
