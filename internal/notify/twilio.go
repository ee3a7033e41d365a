package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	client     *http.Client
	logger     *zap.Logger
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
}

// NewTwilioSender creates an SMS sender. accountSID, authToken and fromNumber
// must all be set or Send fails before making a request.
func NewTwilioSender(accountSID, authToken, fromNumber string, timeout time.Duration, logger *zap.Logger) *TwilioSender {
	return &TwilioSender{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    twilioBaseURL,
	}
}

// WithBaseURL points the sender at a different API host, used in tests.
func (s *TwilioSender) WithBaseURL(base string) *TwilioSender {
	s.baseURL = base
	return s
}

// Send delivers message to the given phone number and returns the Twilio
// message SID.
func (s *TwilioSender) Send(ctx context.Context, to, message string) (string, error) {
	if s.accountSID == "" || s.authToken == "" || s.fromNumber == "" {
		return "", errors.Clone(errors.ErrTransport,
			"missing Twilio config: set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER")
	}

	form := url.Values{}
	form.Set("From", s.fromNumber)
	form.Set("To", to)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTransport.Code, errors.ErrTransport.Status, "twilio request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Warn("twilio send rejected",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)))
		return "", errors.Clone(errors.ErrTransport,
			fmt.Sprintf("twilio returned status %d", resp.StatusCode))
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}

	s.logger.Info("sms sent",
		zap.String("sid", payload.SID),
		zap.Duration("duration", time.Since(start)))
	return payload.SID, nil
}
