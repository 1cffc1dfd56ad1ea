package httputil

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const SeatCookieName = "seat_token"

// SetSeatCookie stores the seat token so a reloaded page keeps its seat.
func SetSeatCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     SeatCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}

	// SameSite=None requires Secure=true, so use Lax for development
	if secure {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}

func ClearSeatCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     SeatCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}

	http.SetCookie(w, cookie)
}

// GetTokenFromCookie extracts the seat token from its cookie
func GetTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SeatCookieName)
	if err != nil {
		return "", errors.New("seat cookie not found")
	}

	if cookie.Value == "" {
		return "", errors.New("seat cookie is empty")
	}

	return cookie.Value, nil
}

// GetTokenFromRequest prefers the Authorization header and falls back to
// the cookie.
func GetTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Support "Bearer <token>" format
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return token, nil
		}
		return authHeader, nil
	}

	token, err := GetTokenFromCookie(r)
	if err == nil && token != "" {
		return token, nil
	}

	return "", errors.New("no seat token found in header or cookie")
}
