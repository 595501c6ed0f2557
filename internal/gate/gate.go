// Package gate decides whether a claimed admin key grants mutation
// privilege.
package gate

import (
	"crypto/subtle"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/metrics"
	"go.uber.org/zap"
)

// ErrorMessage is the only text a rejected caller ever sees.
const ErrorMessage = "invalid admin key"

// Verifier is what mutation paths depend on. A token-based implementation
// can replace Gate without touching them.
type Verifier interface {
	Verify(claimed string) error
}

// Gate compares claims against the admin key configured at startup.
// The zero value rejects everything.
type Gate struct {
	secret []byte
	log    *zap.Logger
}

// New returns a Gate for the configured secret. An empty secret yields a
// gate that fails closed.
func New(secret string, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{secret: []byte(secret), log: log}
}

// Verify returns nil iff a secret is configured and claimed matches it
// exactly. Any other outcome is an apperr.KindUnauthorized error with a
// fixed message; the reason is logged at debug level without either value.
func (g *Gate) Verify(claimed string) error {
	if g == nil || len(g.secret) == 0 {
		g.reject("admin key not configured", claimed)
		return apperr.Unauthorized(ErrorMessage)
	}

	if subtle.ConstantTimeCompare([]byte(claimed), g.secret) != 1 {
		g.reject("admin key mismatch", claimed)
		return apperr.Unauthorized(ErrorMessage)
	}

	metrics.RecordGateDecision(true)
	return nil
}

func (g *Gate) reject(reason, claimed string) {
	metrics.RecordGateDecision(false)
	if g == nil || g.log == nil {
		return
	}
	g.log.Debug("admin key rejected",
		zap.String("reason", reason),
		zap.Int("claimed_len", len(claimed)),
	)
}
