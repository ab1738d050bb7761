package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "HANKO_STORE_SESSION"

// SessionData is the browser session persisted in a signed cookie. CartID is
// the single cart reference owned by this storefront; it stays empty until the
// first successful add-to-cart.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CartID    string    `json:"cart,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// dirty flags the session for re-writing at response time; not serialized
	dirty bool
}

// SessionConfig controls cookie signing and attributes.
type SessionConfig struct {
	SigningKey []byte
	Secure     bool
	TTL        time.Duration
}

// Sessions loads or initializes the signed session and stores it in request
// context. The cookie is written just before the first response byte, and only
// when the session is new or was mutated during the request.
func Sessions(cfg SessionConfig) func(http.Handler) http.Handler {
	key := cfg.SigningKey
	if len(key) == 0 {
		// process-ephemeral key; fine for dev, set a real key in production
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, fromCookie := readSessionCookie(r, key)
			if sd.ID == "" {
				sd.ID = randID()
				sd.CreatedAt = time.Now().UTC()
				sd.UpdatedAt = sd.CreatedAt
				sd.dirty = true
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sd)

			rw := NewResponseRecorder(w)
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if sd.dirty || !fromCookie {
					writeSessionCookie(w, sd, key, cfg.Secure, ttl)
				}
			})
			next.ServeHTTP(rw, r.WithContext(ctx))
			// nothing written yet (e.g. HEAD): persist the cookie now
			if !rw.Wrote() && (sd.dirty || !fromCookie) {
				writeSessionCookie(w, sd, key, cfg.Secure, ttl)
			}
		})
	}
}

// GetSession returns session data from context.
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at response time.
func (s *SessionData) MarkDirty() {
	s.dirty = true
	s.UpdatedAt = time.Now().UTC()
}

// SetCartID stores the cart reference and flags the session for writing.
func (s *SessionData) SetCartID(id string) {
	s.CartID = id
	s.MarkDirty()
}

// readSessionCookie parses and verifies the signed session cookie.
func readSessionCookie(r *http.Request, key []byte) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &SessionData{}, false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData, key []byte, secure bool, ttl time.Duration) {
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, key)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sig,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
