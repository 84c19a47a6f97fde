package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jengzang/activity-dashboard-go/internal/category"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

const shareIssuer = "activity-dashboard"

// ShareClaims carries a filter state inside a signed share token
type ShareClaims struct {
	State models.FilterState `json:"state"`
	jwt.RegisteredClaims
}

// ShareLink is a freshly issued share token
type ShareLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareService issues and resolves HS256 tokens embedding a FilterState
type ShareService struct {
	secret  []byte
	ttl     time.Duration
	catalog *category.Catalog
	now     func() time.Time
}

// NewShareService creates a new share service
func NewShareService(secret string, ttl time.Duration, catalog *category.Catalog) *ShareService {
	return &ShareService{
		secret:  []byte(secret),
		ttl:     ttl,
		catalog: catalog,
		now:     time.Now,
	}
}

// Create validates state and signs it into a token expiring after the configured TTL
func (s *ShareService) Create(state models.FilterState) (*ShareLink, error) {
	if err := filter.Validate(state, s.catalog); err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := ShareClaims{
		State: state,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    shareIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "failed to sign share token")
	}
	return &ShareLink{Token: token, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// Resolve verifies a token and returns the state it carries.
// Bad signatures, foreign algorithms and expired tokens are Unauthorized.
func (s *ShareService) Resolve(token string) (models.FilterState, error) {
	claims := &ShareClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(shareIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		msg := "invalid share token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "share token expired"
		}
		return models.FilterState{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, msg)
	}
	if err := filter.Validate(claims.State, s.catalog); err != nil {
		return models.FilterState{}, err
	}
	return claims.State, nil
}
