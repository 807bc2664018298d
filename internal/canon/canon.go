// Package canon produces the canonical JSON encoding used for every
// signed or HMAC'd payload in the handshake (§4.1, §9 Open Questions):
// sorted object keys, no insignificant whitespace, UTF-8. This is the
// one fixed form this implementation commits to; the two variants the
// original system carried across revisions are not reproduced.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Marshal encodes v (expected to be a map[string]interface{} or a value
// that round-trips through json.Marshal into one) with sorted keys and
// no insignificant whitespace.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal input: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("canon: reparse input: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encode(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

// Payload is a convenience map builder for the signed payloads in §4.2,
// keeping call sites free of manual map[string]interface{} literals.
type Payload map[string]interface{}

// Bytes canonicalizes p.
func (p Payload) Bytes() ([]byte, error) {
	return Marshal(map[string]interface{}(p))
}
