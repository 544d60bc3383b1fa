package server

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/reemaRaven/streetsign/internal/pkg/config"
)

const defaultCookieName = "streetsign_session"

// cookieCodec signs and encrypts the session id cookie. The session
// itself lives server-side; the cookie only carries its id.
type cookieCodec struct {
	sc     *securecookie.SecureCookie
	name   string
	secure bool
}

func newCookieCodec(cfg config.Sessions) cookieCodec {
	// Two keys derived from one secret: signing and encryption.
	h := sha256.Sum256([]byte("auth:" + cfg.CookieSecret))
	e := sha256.Sum256([]byte("enc:" + cfg.CookieSecret))

	name := cfg.CookieName
	if name == "" {
		name = defaultCookieName
	}

	return cookieCodec{
		sc:     securecookie.New(h[:], e[:]),
		name:   name,
		secure: cfg.Secure,
	}
}

func (cc cookieCodec) set(w http.ResponseWriter, sessionID string) error {
	encoded, err := cc.sc.Encode(cc.name, sessionID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct
		Name:     cc.name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (cc cookieCodec) get(r *http.Request) (string, bool) {
	c, err := r.Cookie(cc.name)
	if err != nil {
		return "", false
	}

	var sessionID string
	if err := cc.sc.Decode(cc.name, c.Value, &sessionID); err != nil {
		return "", false
	}

	return sessionID, true
}

func (cc cookieCodec) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct
		Name:     cc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
