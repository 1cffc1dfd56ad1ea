package game

import (
	"fmt"

	"github.com/iamasit07/join-dots/pkg/auth"
)

// Service is the entry point for game logic (facade)
type Service struct {
	Sessions *SessionManager
	Seats    *auth.SeatIssuer
}

func NewService(sessions *SessionManager, seats *auth.SeatIssuer) *Service {
	return &Service{
		Sessions: sessions,
		Seats:    seats,
	}
}

// CreateGame opens a session and issues the seat token that may drive it.
func (s *Service) CreateGame() (*GameSession, string, error) {
	session, err := s.Sessions.CreateSession()
	if err != nil {
		return nil, "", err
	}

	token, err := s.Seats.Issue(session.GameID)
	if err != nil {
		s.Sessions.RemoveSession(session.GameID)
		return nil, "", fmt.Errorf("failed to issue seat token: %w", err)
	}
	return session, token, nil
}

// Seated reports whether token grants control of gameID.
func (s *Service) Seated(gameID, token string) bool {
	if token == "" {
		return false
	}
	claims, err := s.Seats.Validate(token)
	if err != nil {
		return false
	}
	return claims.GameID == gameID
}
