package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/m-abdelwahab/email-agent-workshop/internal/config"
)

var (
	// ErrMissingCredentials indicates the expected auth header was absent or malformed
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrBadCredentials indicates the supplied credentials did not match
	ErrBadCredentials = errors.New("bad credentials")
)

const (
	// AuthorizationHeader carries the basic-auth pair
	AuthorizationHeader = "Authorization"
	// BasicPrefix is the scheme prefix for basic auth
	BasicPrefix = "Basic "
	// SecretHeader carries the shared webhook secret
	SecretHeader = "X-Webhook-Secret"
)

// Verifier checks the caller-supplied credentials on a webhook request.
// It must run before any payload parsing and has no side effects.
type Verifier interface {
	Verify(r *http.Request) error
}

// BasicVerifier validates an Authorization: Basic header against a
// configured username/password pair
type BasicVerifier struct {
	username string
	password string
}

// NewBasicVerifier creates a BasicVerifier with the expected credentials
func NewBasicVerifier(username, password string) *BasicVerifier {
	return &BasicVerifier{username: username, password: password}
}

// Verify implements Verifier
func (v *BasicVerifier) Verify(r *http.Request) error {
	header := r.Header.Get(AuthorizationHeader)
	if header == "" || !strings.HasPrefix(header, BasicPrefix) {
		return ErrMissingCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, BasicPrefix))
	if err != nil {
		return ErrBadCredentials
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return ErrBadCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	if !userOK || !passOK {
		return ErrBadCredentials
	}
	return nil
}

// SecretVerifier validates a shared-secret header against a configured value
type SecretVerifier struct {
	secret string
}

// NewSecretVerifier creates a SecretVerifier with the expected secret
func NewSecretVerifier(secret string) *SecretVerifier {
	return &SecretVerifier{secret: secret}
}

// Verify implements Verifier
func (v *SecretVerifier) Verify(r *http.Request) error {
	supplied := r.Header.Get(SecretHeader)
	if supplied == "" {
		return ErrMissingCredentials
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(v.secret)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// NewVerifier selects the verifier variant from the webhook configuration
func NewVerifier(cfg config.WebhookConfig) (Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeBasic:
		return NewBasicVerifier(cfg.Username, cfg.Password), nil
	case config.AuthModeSecret:
		return NewSecretVerifier(cfg.Secret), nil
	default:
		return nil, errors.New("unknown webhook auth mode: " + cfg.AuthMode)
	}
}

// WebhookAuthMiddleware rejects unauthenticated webhook deliveries before the
// body is read. Response bodies follow the upstream provider contract.
func WebhookAuthMiddleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := verifier.Verify(c.Request); err != nil {
			if errors.Is(err, ErrMissingCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Missing signature header",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
