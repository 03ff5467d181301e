package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/utils"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type tokenInfoResponse struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

// errRetryable marks failures worth another attempt.
var errRetryable = errors.New("retryable")

type tokenInfoVerifier struct {
	client      *http.Client
	endpoint    string
	clientID    string
	maxAttempts int
	baseBackoff time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// NewGoogleVerifier checks ID tokens against Google's tokeninfo endpoint.
// An empty clientID disables the audience check.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &tokenInfoVerifier{
		client:      &http.Client{Timeout: constants.GoogleVerifyTimeout},
		endpoint:    constants.GoogleTokenInfoURL,
		clientID:    clientID,
		maxAttempts: constants.GoogleVerifyMaxAttempts,
		baseBackoff: constants.GoogleVerifyBaseBackoff,
		sleep:       sleepCtx,
	}
}

func (v *tokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	backoff := v.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		id, err := v.verifyOnce(ctx, idToken)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, errRetryable) {
			return nil, err
		}
		lastErr = err
		if attempt == v.maxAttempts {
			break
		}

		utils.Logger.WithError(err).Warnf("google tokeninfo attempt %d/%d failed; retrying in %v", attempt, v.maxAttempts, backoff)
		if err := v.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("%w: google tokeninfo: %v", utils.ErrExternalServiceFailure, lastErr)
}

func (v *tokenInfoVerifier) verifyOnce(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, ErrInvalidGoogleToken
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", errRetryable, err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, ErrInvalidGoogleToken
	}
	if v.clientID != "" && info.Aud != v.clientID {
		return nil, ErrInvalidGoogleToken
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil && time.Unix(exp, 0).Before(time.Now()) {
		return nil, ErrInvalidGoogleToken
	}

	return &GoogleIdentity{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
