package security

import (
	"errors"
	"fmt"
	"time"

	"partyshare/party-api/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = errors.New("no auth token provided")
	ErrTokenExpired = errors.New("auth token expired")
	ErrTokenInvalid = errors.New("auth token invalid")
)

// Cookie names carrying the two tokens
const (
	AccessCookie  = "jwt"
	RefreshCookie = "refreshToken"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is what a verified token proves: the claim was signed by us
// and hasn't expired yet. It says nothing about the user still existing.
type Identity struct {
	UserID string
	Kind   TokenKind
}

type TokenService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	now               func() time.Time
}

func NewTokenService(c *config.JWT) *TokenService {
	return &TokenService{
		accessSecret:      []byte(c.AccessSecret),
		refreshSecret:     []byte(c.RefreshSecret),
		accessExpiration:  c.AccessExpiration,
		refreshExpiration: c.RefreshExpiration,
		now:               time.Now,
	}
}

// IssuePair signs the user ID twice, once per secret and expiration
func (s *TokenService) IssuePair(userID string) (*TokenPair, error) {
	access, err := s.sign(userID, s.accessSecret, s.accessExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token, %w", err)
	}

	refresh, err := s.sign(userID, s.refreshSecret, s.refreshExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token, %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return t.SignedString(secret)
}

// Select picks the token to verify and its matching secret. The access
// token wins when both are present; an empty token means neither was.
func (s *TokenService) Select(access, refresh string) (string, []byte, TokenKind) {
	switch {
	case access != "":
		return access, s.accessSecret, AccessToken
	case refresh != "":
		return refresh, s.refreshSecret, RefreshToken
	default:
		return "", nil, ""
	}
}

// Verify checks the signature and expiry of token and returns its user ID
func (s *TokenService) Verify(token string, secret []byte) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}

	claims := &Claims{}

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	if !t.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}

// Authenticate resolves the caller from the two cookie values
func (s *TokenService) Authenticate(access, refresh string) (Identity, error) {
	token, secret, kind := s.Select(access, refresh)

	userID, err := s.Verify(token, secret)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: userID, Kind: kind}, nil
}
