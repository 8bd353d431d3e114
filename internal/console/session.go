package console

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// State is the login state of the console.
type State int

const (
	LoggedOut State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Tier is the privilege tier of a session.
type Tier int

const (
	Standard Tier = iota
	Legacy
)

func (t Tier) String() string {
	if t == Legacy {
		return "legacy"
	}
	return "standard"
}

// Session is an authenticated console session.
type Session struct {
	ID              string
	Username        string
	Authenticated   bool
	Tier            Tier
	EmergencyAccess bool
	Token           string
	CreatedAt       time.Time
}

// Claims are carried in the session token.
type Claims struct {
	EmergencyAccess bool   `json:"emergency_access"`
	Tier            string `json:"tier"`
	jwt.RegisteredClaims
}

func (c *Console) issueToken(s *Session) (string, error) {
	claims := Claims{
		EmergencyAccess: s.EmergencyAccess,
		Tier:            s.Tier.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.CreatedAt.Add(c.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates a session token and returns its claims.
func (c *Console) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != "HS256" {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !token.Valid {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}
