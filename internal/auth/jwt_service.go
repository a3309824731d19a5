package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when a token cannot be parsed.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenInvalid is returned when a token's signature does not verify
	// or its signing method differs from the configured one.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrMissingSubject is returned when a valid token carries no subject.
	ErrMissingSubject = errors.New("token subject missing")
)

// Claims represents JWT claims. The registered subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// SubjectID parses the subject claim as a user UUID.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	if c.Subject == "" {
		return uuid.Nil, ErrMissingSubject
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrMissingSubject
	}
	return id, nil
}

// JWTService issues and verifies signed access tokens. The secret and
// signing algorithm are fixed at construction; rotating the secret
// invalidates all outstanding tokens.
type JWTService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

// NewJWTService creates a JWT service for the given secret, algorithm name
// (e.g. "HS256") and default token lifetime.
func NewJWTService(secret, algorithm string, defaultTTL time.Duration) *JWTService {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &JWTService{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
	}
}

// IssueToken generates a signed token whose subject is the given user ID,
// expiring after ttl. A non-positive ttl uses the configured default.
func (s *JWTService) IssueToken(subject uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a token string and returns its claims. Rejections
// are distinguished as expired, malformed, invalid signature, or missing
// subject; callers at the HTTP boundary collapse all of these to 401.
func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, err
	}

	return claims, nil
}
