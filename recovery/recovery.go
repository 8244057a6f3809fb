/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recovery

import (
	"log/slog"
	"strings"
	"time"
)

// Kind buckets a failure into the engine's error taxonomy.
type Kind string

const (
	KindAuthentication  Kind = "authentication"
	KindAuthorization   Kind = "authorization"
	KindNetwork         Kind = "network"
	KindValidation      Kind = "validation"
	KindStateMachine    Kind = "stateMachine"
	KindStorage         Kind = "storage"
	KindFileUpload      Kind = "fileUpload"
	KindDomManipulation Kind = "domManipulation"
	KindApi             Kind = "api"
	KindUnknown         Kind = "unknown"
)

// Severity ranks how urgently a failure needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Action names the recovery move for a failure kind.
type Action string

const (
	ActionRetry    Action = "retry"
	ActionRedirect Action = "redirect"
	ActionReset    Action = "reset"
	ActionFix      Action = "fix"
	ActionManual   Action = "manual"
)

// Strategy describes how to recover from a classified failure.
type Strategy struct {
	Action         Action
	AutoRetry      bool
	MaxRetries     int
	RetryDelay     time.Duration
	RedirectTarget string
}

// Flagged is implemented by errors carrying an explicit critical flag. The
// reset callback is never invoked for flagged-critical errors, regardless of
// kind.
type Flagged interface {
	Critical() bool
}

// classifier pairs a kind with its message keyword set. Order is the
// classification priority: authentication is checked before validation so a
// message like "unauthorized request: invalid session" lands on the auth
// bucket, not the validation one.
type classifier struct {
	kind     Kind
	keywords []string
}

var classifiers = []classifier{
	{KindAuthentication, []string{"unauthorized", "authentication", "token", "login", "sign in", "session expired", "credential", "401"}},
	{KindAuthorization, []string{"forbidden", "permission", "access denied", "not allowed", "403"}},
	{KindNetwork, []string{"network", "fetch", "timeout", "connection", "offline", "unreachable", "dns"}},
	{KindValidation, []string{"validation", "invalid", "required", "must be", "malformed", "missing field"}},
	{KindStateMachine, []string{"state machine", "transition", "wizard step", "resume", "state"}},
	{KindStorage, []string{"storage", "quota", "localstorage", "persist", "disk"}},
	{KindFileUpload, []string{"file", "upload", "attachment", "mime"}},
	{KindDomManipulation, []string{"dom", "element", "node", "render"}},
	{KindApi, []string{"api", "server error", "500", "502", "503"}},
}

// Classify buckets err by inspecting its message against the fixed keyword
// sets in priority order.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, c := range classifiers {
		for _, kw := range c.keywords {
			if strings.Contains(msg, kw) {
				return c.kind
			}
		}
	}
	return KindUnknown
}

// SeverityOf maps a kind to its severity.
func SeverityOf(kind Kind) Severity {
	switch kind {
	case KindAuthentication, KindAuthorization:
		return SeverityCritical
	case KindStateMachine, KindDomManipulation:
		return SeverityHigh
	case KindNetwork, KindApi, KindFileUpload:
		return SeverityMedium
	case KindValidation, KindStorage:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// StrategyFor returns the fixed recovery strategy for a kind.
func StrategyFor(kind Kind) Strategy {
	switch kind {
	case KindAuthentication, KindAuthorization:
		return Strategy{Action: ActionRedirect, RedirectTarget: "/signin"}
	case KindNetwork:
		return Strategy{Action: ActionRetry, AutoRetry: true, MaxRetries: 3, RetryDelay: 2 * time.Second}
	case KindValidation:
		return Strategy{Action: ActionFix}
	case KindStateMachine:
		return Strategy{Action: ActionReset, AutoRetry: true, MaxRetries: 1}
	case KindStorage:
		return Strategy{Action: ActionRetry, MaxRetries: 1, RetryDelay: time.Second}
	case KindFileUpload:
		return Strategy{Action: ActionRetry, MaxRetries: 2, RetryDelay: 2 * time.Second}
	case KindDomManipulation:
		return Strategy{Action: ActionReset, MaxRetries: 1}
	case KindApi:
		return Strategy{Action: ActionRetry, AutoRetry: true, MaxRetries: 2, RetryDelay: 3 * time.Second}
	default:
		return Strategy{Action: ActionManual}
	}
}

// recoverable reports whether the reset callback may run for a kind. Kinds
// whose strategy redirects or demands user input are not recoverable in
// place.
func recoverable(kind Kind) bool {
	switch StrategyFor(kind).Action {
	case ActionRetry, ActionReset:
		return true
	default:
		return false
	}
}

// Controller classifies failures from any engine component (or from UI
// hooks) and chooses a recovery strategy, logging every classified error
// with its origin context.
type Controller struct {
	component string
	url       string
	logger    *slog.Logger
	clock     func() time.Time
	resetFn   func(Kind)
}

// New creates a controller for one component. url names the wizard location
// the component serves and is attached to every log entry.
func New(component, url string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		component: component,
		url:       url,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithResetCallback sets the callback invoked for recoverable kinds
func (c *Controller) WithResetCallback(fn func(Kind)) *Controller {
	c.resetFn = fn
	return c
}

// WithClock sets the time source, primarily for tests
func (c *Controller) WithClock(clock func() time.Time) *Controller {
	c.clock = clock
	return c
}

// Handle classifies err, logs it with component context and returns the
// kind with its strategy. The reset callback runs only for recoverable
// kinds, and never when the error carries an explicit critical flag.
func (c *Controller) Handle(err error) (Kind, Strategy) {
	kind := Classify(err)
	strategy := StrategyFor(kind)

	c.logger.Error("classified failure",
		"component", c.component,
		"timestamp", c.clock().UnixMilli(),
		"url", c.url,
		"kind", string(kind),
		"severity", string(SeverityOf(kind)),
		"action", string(strategy.Action),
		"error", err,
	)

	if c.resetFn != nil && recoverable(kind) && !flaggedCritical(err) {
		c.resetFn(kind)
	}
	return kind, strategy
}

func flaggedCritical(err error) bool {
	f, ok := err.(Flagged)
	return ok && f.Critical()
}
