/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapter

import (
	"errors"
	"testing"
	"time"

	"github.com/suparena/draftstore/envelope"
	dserrors "github.com/suparena/draftstore/errors"
	"github.com/suparena/draftstore/kvstore/memkv"
)

func wrap(t *testing.T, value any) *envelope.Envelope {
	t.Helper()
	env, err := envelope.Wrap(value, time.Now(), 0, "2")
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	return env
}

func TestSetGetRoundTrip(t *testing.T) {
	kv := memkv.New()
	a := New(kv, nil)

	res := a.Set("proposal_drafts:d1:organization", wrap(t, map[string]any{"name": "Acme"}))
	if !res.Success {
		t.Fatalf("Set failed: %v", res.Err)
	}
	if res.BytesWritten == 0 {
		t.Error("Expected non-zero bytes written")
	}

	env, ok := a.Get("proposal_drafts:d1:organization")
	if !ok {
		t.Fatal("Expected envelope back")
	}
	var value map[string]any
	if err := env.DecodeValue(&value); err != nil {
		t.Fatalf("DecodeValue failed: %v", err)
	}
	if value["name"] != "Acme" {
		t.Errorf("Round trip lost data: %v", value)
	}
}

func TestUnsupportedPrimitive(t *testing.T) {
	t.Run("NilPrimitive", func(t *testing.T) {
		a := New(nil, nil)

		if a.Supported() {
			t.Fatal("Nil primitive must probe as unsupported")
		}
		res := a.Set("k", wrap(t, "v"))
		if res.Success {
			t.Fatal("Set through unsupported adapter must fail")
		}
		if !errors.Is(res.Err, dserrors.ErrStorageUnsupported) {
			t.Errorf("Expected stable storage-not-supported error, got %v", res.Err)
		}
		if _, ok := a.Get("k"); ok {
			t.Error("Get through unsupported adapter must report absent")
		}
		if keys := a.Enumerate(""); keys != nil {
			t.Errorf("Enumerate through unsupported adapter must be empty, got %v", keys)
		}
		// Remove must be a silent no-op
		a.Remove("k")
	})

	t.Run("UnwritablePrimitive", func(t *testing.T) {
		a := New(memkv.New().WithReadOnly(), nil)

		if a.Supported() {
			t.Fatal("Read-only primitive must fail the probe")
		}
	})
}

func TestSelfHealOnCorruptValue(t *testing.T) {
	kv := memkv.New()
	a := New(kv, nil)

	// Plant a value that is not a well-formed envelope
	if err := kv.SetItem("proposal_drafts:d1:reporting", "{not json"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	if _, ok := a.Get("proposal_drafts:d1:reporting"); ok {
		t.Fatal("Corrupt value must read as absent")
	}
	if _, still := kv.GetItem("proposal_drafts:d1:reporting"); still {
		t.Error("Corrupt key must be purged on read")
	}
}

func TestEnumerate(t *testing.T) {
	kv := memkv.New()
	a := New(kv, nil)

	for _, key := range []string{
		"proposal_drafts:d1:organization",
		"proposal_drafts:d1:reporting",
		"file_d1_flyer",
	} {
		if res := a.Set(key, wrap(t, "x")); !res.Success {
			t.Fatalf("Set(%q) failed: %v", key, res.Err)
		}
	}

	scoped := a.Enumerate("proposal_drafts:")
	if len(scoped) != 2 {
		t.Errorf("Expected 2 namespaced keys, got %v", scoped)
	}

	// Restartable: a second enumeration sees the same live state
	if len(a.Enumerate("proposal_drafts:")) != 2 {
		t.Error("Re-enumeration should re-list from the primitive")
	}

	all := a.Enumerate("")
	if len(all) != 3 {
		t.Errorf("Expected 3 keys total, got %v", all)
	}
}
