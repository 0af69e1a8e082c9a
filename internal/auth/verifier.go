package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/srujan5570/Communications-App/pkg/jwt"
)

var (
	// ErrUnauthenticated means no credential was presented on any channel.
	ErrUnauthenticated = errors.New("no token provided")
	// ErrInvalidCredential means a credential was presented but rejected.
	ErrInvalidCredential = errors.New("invalid token")
)

// Credentials are the places a connecting client may carry its token.
type Credentials struct {
	HandshakeToken      string
	AuthorizationHeader string
	QueryToken          string
}

// FromRequest collects the header and query channels of an upgrade request.
func FromRequest(r *http.Request, handshakeToken string) Credentials {
	return Credentials{
		HandshakeToken:      handshakeToken,
		AuthorizationHeader: r.Header.Get("Authorization"),
		QueryToken:          r.URL.Query().Get("token"),
	}
}

// Token returns the first credential present, in order: handshake payload,
// Authorization bearer header, query parameter.
func (c Credentials) Token() string {
	if t := strings.TrimSpace(c.HandshakeToken); t != "" {
		return t
	}
	if h := strings.TrimSpace(c.AuthorizationHeader); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			if t := strings.TrimSpace(h[7:]); t != "" {
				return t
			}
		}
	}
	return strings.TrimSpace(c.QueryToken)
}

// TokenValidator validates a token string. Satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// Verifier turns presented credentials into a verified user id.
type Verifier struct {
	validator TokenValidator
}

// NewVerifier creates a verifier backed by validator.
func NewVerifier(validator TokenValidator) *Verifier {
	return &Verifier{validator: validator}
}

// Verify returns the user id bound to the credential. The returned error
// is ErrUnauthenticated or wraps ErrInvalidCredential.
func (v *Verifier) Verify(creds Credentials) (string, error) {
	token := creds.Token()
	if token == "" {
		return "", ErrUnauthenticated
	}

	claims, err := v.validator.ValidateToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	userID := claims.Principal()
	if userID == "" {
		return "", ErrInvalidCredential
	}
	return userID, nil
}

// ConnectErrorMessage renders a verification failure the way clients
// expect it in connect_error frames.
func ConnectErrorMessage(err error) string {
	if errors.Is(err, ErrUnauthenticated) {
		return "Authentication error: No token provided"
	}
	return "Authentication error: Invalid token"
}

// Reason returns a short label for a verification failure, used in metrics
// and audit entries.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "missing_token"
	case errors.Is(err, jwt.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_token"
	default:
		return "error"
	}
}
