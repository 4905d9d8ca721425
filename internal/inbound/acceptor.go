// Package inbound is the stateful acceptance layer above the pure
// envelope verifier. It owns everything verification deliberately does
// not: the freshness window, replay-id tracking, per-sender rate
// limits, and decision metrics/logging.
package inbound

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"agentmesh/go-sdk/pkg/did"
	"agentmesh/go-sdk/pkg/envelope"
)

// Status is the terminal outcome for an inbound envelope.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Reason explains a rejection for diagnostics. It is logged and
// counted but never sent back to the submitter: a uniform "rejected"
// on the wire keeps signature validity from becoming an oracle.
type Reason string

const (
	ReasonBadSignature Reason = "bad_signature"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonStale        Reason = "stale"
	ReasonReplay       Reason = "replay"
)

// Decision is the result of running one envelope through the pipeline.
type Decision struct {
	Status Status
	Reason Reason
}

// Options configures an Acceptor. Zero values fall back to protocol
// defaults: ±5 minute freshness, 10 minute replay retention.
type Options struct {
	Resolver        envelope.Resolver
	FreshnessWindow time.Duration
	ReplayRetention time.Duration
	SenderRPS       float64
	SenderBurst     int
	Registerer      prometheus.Registerer
	Logger          *slog.Logger
	Now             func() time.Time
}

// Acceptor runs the inbound state machine:
//
//	received → bad signature        → rejected
//	received → sender over budget   → rejected (rate_limited)
//	received → ts outside window    → rejected (stale)
//	received → id already seen      → rejected (replay)
//	received → otherwise            → accepted
type Acceptor struct {
	resolver envelope.Resolver
	window   time.Duration
	replay   *ReplayCache
	limiter  *SenderLimiter
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time
}

func NewAcceptor(opts Options) *Acceptor {
	if opts.Resolver == nil {
		opts.Resolver = envelope.DIDKeyResolver{}
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Acceptor{
		resolver: opts.Resolver,
		window:   opts.FreshnessWindow,
		replay:   NewReplayCache(opts.ReplayRetention),
		limiter:  NewSenderLimiter(opts.SenderRPS, opts.SenderBurst, 0),
		metrics:  NewMetrics(opts.Registerer),
		log:      opts.Logger,
		now:      opts.Now,
	}
}

// Check runs env through the pipeline. The replay cache only records
// the id when every earlier check passed, so a rejected envelope does
// not poison a later legitimate one with the same id.
func (a *Acceptor) Check(env envelope.Envelope) Decision {
	now := a.now()

	if !envelope.VerifyWith(env, a.resolver) {
		return a.finish(env, Decision{Status: StatusRejected, Reason: ReasonBadSignature})
	}
	if !a.limiter.Allow(env.Sender.ID, now) {
		return a.finish(env, Decision{Status: StatusRejected, Reason: ReasonRateLimited})
	}
	if !a.fresh(env.TS, now) {
		return a.finish(env, Decision{Status: StatusRejected, Reason: ReasonStale})
	}
	if !a.replay.Remember(env.ID, now) {
		return a.finish(env, Decision{Status: StatusRejected, Reason: ReasonReplay})
	}
	return a.finish(env, Decision{Status: StatusAccepted})
}

func (a *Acceptor) fresh(ts string, now time.Time) bool {
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return false
	}
	skew := now.Sub(at)
	if skew < 0 {
		skew = -skew
	}
	return skew <= a.window
}

func (a *Acceptor) finish(env envelope.Envelope, d Decision) Decision {
	a.metrics.observe(d)
	if d.Status == StatusAccepted {
		a.log.Debug("envelope accepted",
			"id", env.ID,
			"type", string(env.Type),
			"sender", did.Fingerprint(env.Sender.ID),
		)
	} else {
		a.log.Info("envelope rejected",
			"id", env.ID,
			"type", string(env.Type),
			"sender", did.Fingerprint(env.Sender.ID),
			"reason", string(d.Reason),
		)
	}
	return d
}
