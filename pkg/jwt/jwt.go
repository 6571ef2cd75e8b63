package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	// ErrUnboundPortal token de rol customer sin cliente asociado.
	ErrUnboundPortal = errors.New("jwt: token de portal sin customer_id")
)

// portalRole rol cuyos tokens quedan ligados a un único cliente.
const portalRole = "customer"

// Subject identidad que viaja en el token. Para el portal, CustomerID fija el
// único cliente cuyos documentos puede ver el portador.
type Subject struct {
	UserID     string
	CustomerID string
	Role       string
}

func (s Subject) validate() error {
	if s.UserID == "" || s.Role == "" {
		return fmt.Errorf("jwt: user_id y role son obligatorios")
	}
	if s.Role == portalRole && s.CustomerID == "" {
		return ErrUnboundPortal
	}
	return nil
}

type claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	CustomerID string `json:"customer_id,omitempty"`
	Role       string `json:"role"`
}

// Generate firma con HS256 un token para s que caduca tras ttl.
func Generate(secret, issuer string, ttl time.Duration, s Subject) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if err := s.validate(); err != nil {
		return "", err
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     s.UserID,
		CustomerID: s.CustomerID,
		Role:       s.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Parse verifica firma y caducidad y devuelve la identidad del portador.
// Un token de portal sin cliente se rechaza aunque la firma sea válida.
func Parse(secret, token string) (Subject, error) {
	if secret == "" {
		return Subject{}, ErrEmptySecret
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Subject{}, err
	}
	s := Subject{UserID: c.UserID, CustomerID: c.CustomerID, Role: c.Role}
	if err := s.validate(); err != nil {
		return Subject{}, err
	}
	return s, nil
}
