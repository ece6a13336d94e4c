package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
	"eventboard/internal/metrics"
)

type contextKey string

const editorIDKey contextKey = "editorID"

// SetEditorID returns a context carrying the authenticated editor.
func SetEditorID(ctx context.Context, editorID string) context.Context {
	return context.WithValue(ctx, editorIDKey, editorID)
}

// EditorIDFromContext returns the authenticated editor from the context, if present.
func EditorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(editorIDKey).(string)
	return id, ok
}

// rejection is why a request did not get past the editor check.
type rejection struct {
	reason  string
	message string
}

var (
	rejectNoHeader = rejection{"missing_header", "editor sign-in required"}
	rejectScheme   = rejection{"bad_scheme", "authorization must use the Bearer scheme"}
	rejectNoToken  = rejection{"missing_token", "editor sign-in required"}
	rejectExpired  = rejection{"expired", "editor session expired, sign in again"}
	rejectInvalid  = rejection{"invalid", "invalid editor token"}
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, *rejection) {
	if header == "" {
		return "", &rejectNoHeader
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", &rejectScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &rejectNoToken
	}
	return token, nil
}

// RequireAuth guards the editor routes: the bearer token must verify, and its subject
// becomes the editor ID in the request context. Rejections answer 401 and are counted by reason.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	reject := func(w http.ResponseWriter, rej *rejection) {
		metrics.RecordAuthRejected(rej.reason)
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, rej.message)
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, rej := bearerToken(r.Header.Get("Authorization"))
			if rej != nil {
				reject(w, rej)
				return
			}
			editorID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "editor token rejected", "method", r.Method, "path", r.URL.Path, "err", err)
				if errors.Is(err, domain.ErrTokenExpired) {
					reject(w, &rejectExpired)
				} else {
					reject(w, &rejectInvalid)
				}
				return
			}
			next(w, r.WithContext(SetEditorID(r.Context(), editorID)))
		}
	}
}
