package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendChallengeCompleted(ctx context.Context, toEmail, username, challengeTitle string, credits int) error
}

// NoopEmailService is used when no email API key is configured.
type NoopEmailService struct{}

func (s *NoopEmailService) SendChallengeCompleted(ctx context.Context, toEmail, username, challengeTitle string, credits int) error {
	log.Printf("[EmailService] noop send challenge completed to=%s challenge=%q", toEmail, challengeTitle)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendChallengeCompleted(ctx context.Context, toEmail, username, challengeTitle string, credits int) error {
	if toEmail == "" || challengeTitle == "" {
		return fmt.Errorf("toEmail and challengeTitle are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Challenge completed: %s", challengeTitle),
		Text: fmt.Sprintf("Hi %s,\n\nYou completed the %q challenge and earned %d credits. Keep it up!\n\n— ByteBolt",
			username, challengeTitle, credits),
		Html: fmt.Sprintf("<p>Hi %s,</p><p>You completed the <strong>%s</strong> challenge and earned <strong>%d credits</strong>. Keep it up!</p><p>— ByteBolt</p>",
			username, challengeTitle, credits),
	}

	options := &resend.SendEmailOptions{}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
