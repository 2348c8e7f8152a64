package dashboard

import (
	"contactdash/config"
	"crypto/rand"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// markerTTL bounds how long a login marker is honoured
const markerTTL = 24 * time.Hour

// ErrInvalidCredentials is returned by Login when the submitted pair does not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the identity shown in the dashboard header
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type markerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Gate is the dashboard login screen. It compares the submitted credentials
// with the single configured pair and hands out a signed marker that keeps the
// user logged in. It does not protect the API.
type Gate struct {
	email    string
	password string
	name     string
	role     string
	secret   []byte
	now      func() time.Time
}

// NewGate builds a gate from cfg. Without a configured secret a random one is
// generated, so markers do not survive a restart.
func NewGate(cfg config.AuthConfig) *Gate {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
	}
	return &Gate{
		email:    cfg.Email,
		password: cfg.Password,
		name:     cfg.Name,
		role:     cfg.Role,
		secret:   secret,
		now:      time.Now,
	}
}

// Enabled reports whether a credential pair is configured. Without one no
// login can succeed.
func (g *Gate) Enabled() bool {
	return g.email != "" && g.password != ""
}

// Login checks the pair and returns the user with a fresh marker
func (g *Gate) Login(email, password string) (*User, string, error) {
	if !g.Enabled() {
		return nil, "", ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(g.email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !emailOK || !passwordOK {
		return nil, "", ErrInvalidCredentials
	}

	user := &User{
		ID:    uuid.NewString(),
		Email: g.email,
		Name:  g.name,
		Role:  g.role,
	}

	now := g.now()
	claims := markerClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(markerTTL)),
		},
	}

	marker, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, "", errors.Wrap(err, "sign marker")
	}
	return user, marker, nil
}

// Resume restores the user from a stored marker. Any marker that fails to
// parse, is signed with another key or has expired is rejected.
func (g *Gate) Resume(marker string) (*User, error) {
	if marker == "" {
		return nil, errors.New("no marker")
	}

	claims := &markerClaims{}
	_, err := jwt.ParseWithClaims(marker, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "resume marker")
	}

	return &User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}
