package auth

import (
	"net/http"
	apperrors "servicelink/pkg/errors"
	httputil "servicelink/pkg/http"
	"servicelink/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type Verifier interface {
	Verify(token string) (*Actor, error)
}

type Middleware struct {
	verifier Verifier
	log      *logger.Logger
}

func NewMiddleware(verifier Verifier, log *logger.Logger) *Middleware {
	return &Middleware{verifier: verifier, log: log}
}

// Require rejects the request with 401 unless it carries a valid bearer token.
func (m *Middleware) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, err := m.verifier.Verify(httputil.BearerToken(r))
		if err != nil {
			m.log.Warn("Authentication failed",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err,
			)
			if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
				m.log.Error("failed to write error response", "handler", "Require", "operation", "WriteError", "error", writeErr)
			}
			return
		}

		next(w, r.WithContext(WithActor(r.Context(), actor)), ps)
	}
}
