package relation

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type localeValue struct {
	locale string
	value  string
}

// LocalizedText is either a plain string or a locale → string mapping.
// Mapping order is preserved from the source document so "first defined value" is stable.
type LocalizedText struct {
	plain   *string
	entries []localeValue
}

func Plain(s string) LocalizedText {
	return LocalizedText{plain: &s}
}

// Localized builds a mapping from alternating locale/value pairs.
func Localized(pairs ...string) LocalizedText {
	t := LocalizedText{}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.entries = append(t.entries, localeValue{locale: pairs[i], value: pairs[i+1]})
	}
	return t
}

func (t LocalizedText) IsZero() bool {
	return t.plain == nil && len(t.entries) == 0
}

// Resolve returns the value for locale, else the first defined value, else ("", false).
func (t LocalizedText) Resolve(locale string) (string, bool) {
	if t.plain != nil {
		return *t.plain, true
	}
	for _, e := range t.entries {
		if e.locale == locale {
			return e.value, true
		}
	}
	if len(t.entries) > 0 {
		return t.entries[0].value, true
	}
	return "", false
}

// String resolves for locale and collapses a miss to "".
func (t LocalizedText) String(locale string) string {
	s, _ := t.Resolve(locale)
	return s
}

// UnmarshalJSON keeps string-valued entries of a mapping in document order; null and
// non-string entries count as undefined.
func (t *LocalizedText) UnmarshalJSON(b []byte) error {
	*t = LocalizedText{}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		t.plain = &s
		return nil
	}

	if trimmed[0] != '{' {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyToken.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		t.entries = append(t.entries, localeValue{locale: key, value: value})
	}
	return nil
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.plain != nil {
		return json.Marshal(*t.plain)
	}
	if len(t.entries) == 0 {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.locale)
		v, _ := json.Marshal(e.value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *LocalizedText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = LocalizedText{}
		return nil
	case []byte:
		return t.UnmarshalJSON(v)
	case string:
		return t.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("relation.LocalizedText.Scan: unsupported type %T", src)
	}
}

func (t LocalizedText) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.MarshalJSON()
}
