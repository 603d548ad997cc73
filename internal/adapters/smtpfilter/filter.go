// Package smtpfilter runs the triage pipeline as an SMTP content
// filter: inbound messages are triaged, stamped with X-Triage headers
// and relayed to the next hop.
package smtpfilter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/config"
	"github.com/mikey/mail-triage/internal/core"
)

const triageTimeout = 60 * time.Second

// Filter is an SMTP server that triages every message passing through.
type Filter struct {
	service *core.TriageService
	logger  *zap.Logger
	cfg     config.SMTPConfig
	server  *smtp.Server
}

// NewFilter creates a new SMTP content filter.
func NewFilter(service *core.TriageService, logger *zap.Logger, cfg config.SMTPConfig) *Filter {
	return &Filter{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP filter service.
func (f *Filter) Start() error {
	f.server = smtp.NewServer(&backend{filter: f})
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP triage filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP filter service.
func (f *Filter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// relay sends the stamped message to the configured next hop.
func (f *Filter) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.cfg.RelayAddress, f.cfg.RelayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// backend implements the go-smtp Backend interface
type backend struct {
	filter *Filter
}

func (b *backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &session{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// session implements the go-smtp Session interface
type session struct {
	filter     *Filter
	sender     string
	recipients []string
}

func (s *session) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

func (s *session) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data triages the message, stamps the verdict headers and relays the
// result.
func (s *session) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	email := &core.Email{
		From:    s.sender,
		To:      s.recipients,
		Subject: msg.Header.Get("Subject"),
	}
	email.Body, err = extractPlainText(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), triageTimeout)
	defer cancel()

	result, triageErr := s.filter.service.ProcessEmail(ctx, email)
	if triageErr != nil {
		// Triage never blocks delivery; the message passes with an
		// error marker instead.
		s.filter.logger.Error("Failed to triage message",
			zap.Error(triageErr),
			zap.String("sender", s.sender))
	}

	cfg := s.filter.cfg
	if result != nil && result.Spam.IsSpam && cfg.BlockSpam {
		s.filter.logger.Info("Rejecting spam message",
			zap.String("from", email.From),
			zap.Float64("score", result.SpamScore))
		return fmt.Errorf("550 Rejected as spam (score: %.2f)", result.SpamScore)
	}

	var stamped bytes.Buffer
	if result != nil {
		fmt.Fprintf(&stamped, "%s: %t\r\n", cfg.SpamHeader, result.Spam.IsSpam)
		fmt.Fprintf(&stamped, "%s: %.4f\r\n", cfg.ScoreHeader, result.SpamScore)
		fmt.Fprintf(&stamped, "%s: %s\r\n", cfg.PriorityHeader, result.Priority)
		if result.DetectedLanguage != nil {
			fmt.Fprintf(&stamped, "%s: %s\r\n", cfg.LanguageHeader, result.DetectedLanguage.Code)
		}
	} else {
		fmt.Fprintf(&stamped, "X-Triage-Error: %s\r\n", triageErr.Error())
	}
	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&stamped, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&stamped, "\r\n")
	stamped.Write(rawBody(rawData, msg))

	if cfg.RelayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, stamped.Bytes()); err != nil {
			s.filter.logger.Error("Failed to relay message",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay disabled, message dropped after triage")
	}

	if result != nil {
		s.filter.logger.Info("Message triaged on SMTP path",
			zap.String("from", email.From),
			zap.Bool("is_spam", result.Spam.IsSpam),
			zap.String("priority", string(result.Priority)),
			zap.Float64("score", result.SpamScore))
	}
	return nil
}

// rawBody locates the original body bytes so MIME parts and
// attachments survive the header rewrite.
func rawBody(rawData []byte, msg *mail.Message) []byte {
	if i := bytes.Index(rawData, []byte("\r\n\r\n")); i != -1 {
		return rawData[i+4:]
	}
	if i := bytes.Index(rawData, []byte("\n\n")); i != -1 {
		return rawData[i+2:]
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil
	}
	return body
}

func (s *session) Logout() error {
	return nil
}
