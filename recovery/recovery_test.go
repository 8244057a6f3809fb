/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recovery

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message  string
		expected Kind
	}{
		{"Invalid token", KindAuthentication},
		{"unauthorized request: invalid session", KindAuthentication},
		{"403 Forbidden", KindAuthorization},
		{"network timeout while saving", KindNetwork},
		{"validation failed for field \"section\"", KindValidation},
		{"illegal wizard step transition", KindStateMachine},
		{"storage quota exceeded", KindStorage},
		{"file upload rejected", KindFileUpload},
		{"element not found in DOM", KindDomManipulation},
		{"api returned 502", KindApi},
		{"something inexplicable happened", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := Classify(errors.New(tt.message))
			if got != tt.expected {
				t.Errorf("Classify(%q) = %q, expected %q", tt.message, got, tt.expected)
			}
		})
	}

	if Classify(nil) != KindUnknown {
		t.Error("nil error classifies as unknown")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected Severity
	}{
		{KindAuthentication, SeverityCritical},
		{KindAuthorization, SeverityCritical},
		{KindStateMachine, SeverityHigh},
		{KindDomManipulation, SeverityHigh},
		{KindNetwork, SeverityMedium},
		{KindApi, SeverityMedium},
		{KindFileUpload, SeverityMedium},
		{KindValidation, SeverityLow},
		{KindStorage, SeverityLow},
		{KindUnknown, SeverityMedium},
	}

	for _, tt := range tests {
		if got := SeverityOf(tt.kind); got != tt.expected {
			t.Errorf("SeverityOf(%q) = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}

func TestStrategy(t *testing.T) {
	t.Run("AuthenticationRedirects", func(t *testing.T) {
		s := StrategyFor(KindAuthentication)
		if s.Action != ActionRedirect {
			t.Errorf("Expected redirect, got %q", s.Action)
		}
		if s.AutoRetry {
			t.Error("Authentication failures must not auto-retry")
		}
		if s.RedirectTarget == "" {
			t.Error("Redirect strategy needs a target")
		}
	})

	t.Run("NetworkRetries", func(t *testing.T) {
		s := StrategyFor(KindNetwork)
		if s.Action != ActionRetry || !s.AutoRetry || s.MaxRetries != 3 {
			t.Errorf("Expected auto-retry x3, got %+v", s)
		}
	})

	t.Run("ValidationFixes", func(t *testing.T) {
		s := StrategyFor(KindValidation)
		if s.Action != ActionFix || s.AutoRetry {
			t.Errorf("Expected fix without retry, got %+v", s)
		}
	})

	t.Run("StateMachineResets", func(t *testing.T) {
		s := StrategyFor(KindStateMachine)
		if s.Action != ActionReset || !s.AutoRetry || s.MaxRetries != 1 {
			t.Errorf("Expected one auto reset, got %+v", s)
		}
	})
}

// criticalErr carries an explicit critical flag regardless of its message.
type criticalErr struct{ msg string }

func (e *criticalErr) Error() string  { return e.msg }
func (e *criticalErr) Critical() bool { return true }

func TestHandle(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("InvokesResetForRecoverableKinds", func(t *testing.T) {
		var resets []Kind
		c := New("draft-persistence", "/proposals/new", discard).
			WithResetCallback(func(k Kind) { resets = append(resets, k) })

		kind, strategy := c.Handle(errors.New("network timeout"))
		if kind != KindNetwork || strategy.Action != ActionRetry {
			t.Fatalf("Unexpected classification: %q %+v", kind, strategy)
		}
		if len(resets) != 1 || resets[0] != KindNetwork {
			t.Errorf("Expected one reset for network kind, got %v", resets)
		}
	})

	t.Run("NoResetForRedirectKinds", func(t *testing.T) {
		var resets []Kind
		c := New("draft-persistence", "/proposals/new", discard).
			WithResetCallback(func(k Kind) { resets = append(resets, k) })

		c.Handle(errors.New("Invalid token"))
		if len(resets) != 0 {
			t.Errorf("Authentication failures must not trigger reset, got %v", resets)
		}
	})

	t.Run("NoResetForCriticalFlag", func(t *testing.T) {
		var resets []Kind
		c := New("draft-persistence", "/proposals/new", discard).
			WithResetCallback(func(k Kind) { resets = append(resets, k) })

		// Message classifies as recoverable storage, but the flag wins
		c.Handle(&criticalErr{msg: "storage quota exceeded"})
		if len(resets) != 0 {
			t.Errorf("Flagged-critical errors must not trigger reset, got %v", resets)
		}
	})
}
