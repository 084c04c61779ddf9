// Package responder produces suspect replies. The rule engine always answers; the Oracle asks a language model with
// the same facts and disclosure contract, and Fallback puts the two together.
package responder

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"log/slog"
	"time"
)

var (
	// ErrUnavailable means the remote responder could not be reached.
	ErrUnavailable = errors.NewSentinel("responder unavailable")
	// ErrMalformed means the remote responder answered with something that could not be used.
	ErrMalformed = errors.NewSentinel("malformed responder reply")
)

type Responder interface {
	Respond(ctx context.Context, req interrogation.Request) (interrogation.Reply, error)
}

// Local answers with the rule engine.
type Local struct {
	engine *interrogation.Engine
}

func NewLocal(engine *interrogation.Engine) *Local {
	return &Local{engine: engine}
}

func (l *Local) Respond(ctx context.Context, req interrogation.Request) (interrogation.Reply, error) {
	return l.engine.Ask(ctx, req)
}

// Fallback tries primary within timeout and answers with the rule engine on any failure.
type Fallback struct {
	primary Responder
	local   *Local
	timeout time.Duration
	logger  *slog.Logger
}

func NewFallback(primary Responder, local *Local, timeout time.Duration, logger *slog.Logger) *Fallback {
	return &Fallback{
		primary: primary,
		local:   local,
		timeout: timeout,
		logger:  logger.With("source", "responder.Fallback"),
	}
}

// Respond never fails because of the primary responder. The only error left is an unknown suspect.
func (f *Fallback) Respond(ctx context.Context, req interrogation.Request) (interrogation.Reply, error) {
	if f.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, f.timeout)
		reply, err := f.primary.Respond(pctx, req)
		cancel()
		if err == nil {
			return reply, nil
		}
		f.logger.LogAttrs(ctx, slog.LevelWarn, "primary responder failed, answering locally",
			slog.String("suspect_id", req.SuspectID), errors.SlogError(err))
	}
	return f.local.Respond(ctx, req)
}
