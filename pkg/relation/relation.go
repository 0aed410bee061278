// Package relation resolves the loosely shaped relation values written by the content store.
//
// A relation column holds either an embedded object carrying an "id", a bare scalar id, or nothing.
// Relation models that as a tagged union so every entity type resolves ids the same way.
package relation

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Absent Kind = iota
	ID
	Embedded
)

func (k Kind) String() string {
	switch k {
	case ID:
		return "id"
	case Embedded:
		return "embedded"
	default:
		return "absent"
	}
}

type Relation struct {
	kind   Kind
	id     string
	object map[string]any
}

// None is the absent relation.
var None = Relation{}

func FromID(id string) Relation {
	if strings.TrimSpace(id) == "" {
		return None
	}
	return Relation{kind: ID, id: id}
}

func FromObject(object map[string]any) Relation {
	if object == nil {
		return None
	}
	return Relation{kind: Embedded, object: object}
}

// FromAny classifies an already decoded value.
func FromAny(v any) Relation {
	switch t := v.(type) {
	case nil:
		return None
	case Relation:
		return t
	case *Relation:
		if t == nil {
			return None
		}
		return *t
	case map[string]any:
		return FromObject(t)
	default:
		if id, ok := scalarID(t); ok {
			return FromID(id)
		}
		return None
	}
}

func (r Relation) Kind() Kind {
	return r.kind
}

func (r Relation) IsAbsent() bool {
	return r.kind == Absent
}

// ResolveID returns the canonical string id. Embedded objects without a usable id do not resolve.
func (r Relation) ResolveID() (string, bool) {
	switch r.kind {
	case ID:
		return r.id, true
	case Embedded:
		id, ok := scalarID(r.object["id"])
		if !ok || strings.TrimSpace(id) == "" {
			return "", false
		}
		return id, true
	default:
		return "", false
	}
}

// IDOrEmpty is ResolveID collapsed to "" on a miss.
func (r Relation) IDOrEmpty() string {
	id, _ := r.ResolveID()
	return id
}

// Field returns a field of the embedded object, or nil.
func (r Relation) Field(name string) any {
	if r.kind != Embedded {
		return nil
	}
	return r.object[name]
}

func scalarID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}

func decodeAny(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalJSON never fails on shape: values that are neither ids nor objects become Absent.
func (r *Relation) UnmarshalJSON(b []byte) error {
	v, err := decodeAny(b)
	if err != nil {
		return err
	}
	*r = FromAny(v)
	return nil
}

func (r Relation) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case ID:
		return json.Marshal(r.id)
	case Embedded:
		return json.Marshal(r.object)
	default:
		return []byte("null"), nil
	}
}

// Scan reads a plain text foreign key or a JSON document (object or quoted id).
func (r *Relation) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*r = None
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	case int64:
		*r = FromID(strconv.FormatInt(v, 10))
		return nil
	default:
		return fmt.Errorf("relation.Scan: unsupported type %T", src)
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, `"`) || trimmed == "null" {
		return r.UnmarshalJSON([]byte(trimmed))
	}
	*r = FromID(trimmed)
	return nil
}

// Value stores the resolved id, so single relations map onto text foreign key columns.
func (r Relation) Value() (driver.Value, error) {
	id, ok := r.ResolveID()
	if !ok {
		return nil, nil
	}
	return id, nil
}

// List is a list-valued relation.
type List []Relation

func ListOfIDs(ids ...string) List {
	out := make(List, 0, len(ids))
	for _, id := range ids {
		out = append(out, FromID(id))
	}
	return out
}

// ResolveIDs maps every element through ResolveID and silently drops the ones that do not resolve.
func (l List) ResolveIDs() []string {
	ids := make([]string, 0, len(l))
	for _, r := range l {
		if id, ok := r.ResolveID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// UnmarshalJSON accepts an array, null, or a single relation value.
func (l *List) UnmarshalJSON(b []byte) error {
	v, err := decodeAny(b)
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*l = nil
	case []any:
		out := make(List, 0, len(t))
		for _, item := range t {
			out = append(out, FromAny(item))
		}
		*l = out
	default:
		*l = List{FromAny(t)}
	}
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Relation(l))
}

func (l *List) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return l.UnmarshalJSON(v)
	case string:
		return l.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("relation.List.Scan: unsupported type %T", src)
	}
}

func (l List) Value() (driver.Value, error) {
	return l.MarshalJSON()
}
