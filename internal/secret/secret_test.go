package secret_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/flight-deals/internal/secret"
)

func TestSecretIsRedacted(t *testing.T) {
	s := secret.New("hunter2")
	for _, out := range []string{
		s.String(),
		fmt.Sprintf("%v %+v %s", s, s, s),
		fmt.Sprintf("%#v", s),
	} {
		if strings.Contains(out, "hunter2") {
			t.Fatalf("secret leaked: %q", out)
		}
	}
	b, err := json.Marshal(struct{ Key secret.Secret }{s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "hunter2") {
		t.Fatalf("secret leaked in json: %s", b)
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("x", "key", s)
	if strings.Contains(buf.String(), "hunter2") {
		t.Fatalf("secret leaked in log: %s", buf.String())
	}
	if s.Reveal() != "hunter2" {
		t.Fatal("reveal must return the raw value")
	}
}

func TestEmptySecret(t *testing.T) {
	var s secret.Secret
	if !s.Empty() || s.String() != "" {
		t.Fatalf("zero secret should be empty, got %q", s.String())
	}
}

func TestSealOpen(t *testing.T) {
	key, err := secret.NewKey()
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	box, err := secret.NewBox(key)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	sealed, err := box.Seal("api-key-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !secret.IsSealed(sealed) || strings.Contains(sealed, "api-key-123") {
		t.Fatalf("unexpected sealed form %q", sealed)
	}
	got, err := secret.Resolve(box, sealed)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Reveal() != "api-key-123" {
		t.Fatalf("round trip mismatch: %q", got.Reveal())
	}

	other, _ := secret.NewKey()
	otherBox, _ := secret.NewBox(other)
	if _, err := otherBox.Open(sealed); err == nil {
		t.Fatal("expected failure with the wrong key")
	}
}

func TestResolvePlainAndMissingKey(t *testing.T) {
	s, err := secret.Resolve(nil, "plain")
	if err != nil || s.Reveal() != "plain" {
		t.Fatalf("plain value: %v %q", err, s.Reveal())
	}
	if _, err := secret.Resolve(nil, "enc:AAAA"); !errors.Is(err, secret.ErrNoKey) {
		t.Fatalf("expected ErrNoKey, got %v", err)
	}
}

func TestNewBoxRejectsShortKey(t *testing.T) {
	if _, err := secret.NewBox([]byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}
