package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Conversion maps currency codes to converted prices and remembers the order
// in which the codes appeared in the provider payload.
type Conversion struct {
	keys   []string
	values map[string]decimal.Decimal
}

// Set adds or replaces a code. A new code goes to the end. Set never writes
// to storage shared with copies of c.
func (c *Conversion) Set(code string, amount decimal.Decimal) {
	values := make(map[string]decimal.Decimal, len(c.values)+1)
	for k, v := range c.values {
		values[k] = v
	}
	keys := c.keys[:len(c.keys):len(c.keys)]
	if _, ok := values[code]; !ok {
		keys = append(keys, code)
	}
	values[code] = amount
	c.keys, c.values = keys, values
}

func (c Conversion) Get(code string) (decimal.Decimal, bool) {
	v, ok := c.values[code]
	return v, ok
}

func (c Conversion) Len() int { return len(c.keys) }

// Keys returns the codes in payload order.
func (c Conversion) Keys() []string {
	return append([]string(nil), c.keys...)
}

// First returns the first code in payload order, or "" when empty.
func (c Conversion) First() string {
	if len(c.keys) == 0 {
		return ""
	}
	return c.keys[0]
}

func (c *Conversion) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Conversion{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("conversion: expected object, got %v", tok)
	}

	var out Conversion
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("conversion: expected currency code, got %v", tok)
		}
		var amount decimal.Decimal
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("conversion %s: %w", code, err)
		}
		out.Set(code, amount)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}
