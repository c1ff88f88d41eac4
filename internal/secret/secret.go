// Package secret keeps credentials out of logs and output. A Secret only
// yields its value through Reveal.
package secret

import (
	"encoding/json"
	"log/slog"
)

const redacted = "**********"

type Secret struct{ v string }

func New(v string) Secret { return Secret{v: v} }

// Reveal returns the raw credential. Use it only when building request
// headers or transport auth.
func (s Secret) Reveal() string { return s.v }

func (s Secret) Empty() bool { return s.v == "" }

func (s Secret) String() string {
	if s.v == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string { return "secret.Secret(" + s.String() + ")" }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s Secret) LogValue() slog.Value { return slog.StringValue(s.String()) }
