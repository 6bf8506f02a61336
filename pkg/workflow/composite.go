package workflow

import (
	"bytes"
	"encoding/json"

	"github.com/pantainos/fmp/pkg/fmp"
)

// Composite is an ordered mapping from field name to a settled fetch
// result. Field order follows the order the caller requested the
// fields, not completion order, so output is deterministic.
type Composite struct {
	names  []string
	values map[string]fmp.Result
}

// Len returns the number of fields.
func (c *Composite) Len() int { return len(c.names) }

// Names returns the field names in request order.
func (c *Composite) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Get returns the result for a field name.
func (c *Composite) Get(name string) (fmp.Result, bool) {
	res, ok := c.values[name]
	return res, ok
}

// Failed returns the names of fields that settled on their fallback,
// in request order.
func (c *Composite) Failed() []string {
	var out []string
	for _, name := range c.names {
		if !c.values[name].Succeeded {
			out = append(out, name)
		}
	}
	return out
}

// MarshalJSON renders the composite as a JSON object whose keys appear
// in request order. A map would marshal with sorted keys instead.
func (c *Composite) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value := c.values[name].Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
