package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/response"
)

const (
	// APIKeyHeader carries the shared API key.
	APIKeyHeader = "X-API-Key"
	// TimeTokenHeader carries a fernet token minted from the API key.
	TimeTokenHeader = "X-Time-Token"
	// TimeTokenTTL is how long a time token stays valid.
	TimeTokenTTL = 5 * time.Minute

	timeTokenMessage = "psx-portfolio-tracker"
)

// fernetKey derives the token key from the API key.
func fernetKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}

// GenerateTimeToken mints a time token for apiKey. Clients send it in
// X-Time-Token alongside X-API-Key; it expires after TimeTokenTTL.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(timeTokenMessage), fernetKey(apiKey))
	if err != nil {
		return ""
	}
	return string(tok)
}

// APIKeyMiddleware returns a middleware that requires a matching X-API-Key
// header and a valid, unexpired X-Time-Token. An empty apiKey rejects every
// request with 500.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	keys := []*fernet.Key{fernetKey(apiKey)}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				response.RespondError(w, http.StatusInternalServerError, "internal server error", "Authentication not loaded")
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			token := r.Header.Get(TimeTokenHeader)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
				return
			}
			if fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, keys) == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
