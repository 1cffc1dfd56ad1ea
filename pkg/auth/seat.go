package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const seatIssuer = "join-dots"

// SeatClaims binds a token to the single game it may drive.
type SeatClaims struct {
	GameID string `json:"game_id"`
	jwt.RegisteredClaims
}

// SeatIssuer signs and checks seat tokens with an HMAC secret.
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSeatIssuer(secret string, ttl time.Duration) *SeatIssuer {
	return &SeatIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a seat token for gameID
func (s *SeatIssuer) Issue(gameID string) (string, error) {
	if gameID == "" {
		return "", errors.New("game id is required")
	}

	now := s.now()
	claims := &SeatClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   seatIssuer,
			Subject:  gameID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a seat token and returns its claims
func (s *SeatIssuer) Validate(tokenString string) (*SeatClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(seatIssuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SeatClaims); ok && token.Valid && claims.GameID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid seat token")
}
