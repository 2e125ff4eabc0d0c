package content

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Fields is a partial update keyed by JSON field name, for example
// Fields{"title": "New title", "tags": []string{"parks"}}.
type Fields map[string]any

// immutableFields are never overwritten by a patch.
var immutableFields = []string{"id"}

// ApplyFields merges fields over it in place. The item is round-tripped
// through its JSON form, so values must be JSON-compatible with the
// target field. The result must still pass Validate. On error the item
// is left unchanged.
func ApplyFields(it Item, fields Fields) error {
	current, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("apply fields: encode %s: %w", it.Kind(), err)
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("apply fields: %w", err)
	}
	for k, v := range fields {
		if slices.Contains(immutableFields, k) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("apply fields: field %q: %w", k, err)
		}
		merged[k] = raw
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("apply fields: %w", err)
	}

	// The live record is only assigned once decoding succeeded.
	scratch := New(it.Kind())
	if err := json.Unmarshal(data, scratch); err != nil {
		return fmt.Errorf("apply fields: decode %s: %w", it.Kind(), err)
	}
	Normalize(scratch)
	if err := Validate(scratch); err != nil {
		return fmt.Errorf("apply fields: %w", err)
	}
	return assign(it, scratch)
}

// assign copies src into dst; both must be the same variant.
func assign(dst, src Item) error {
	switch d := dst.(type) {
	case *Idea:
		*d = *src.(*Idea)
	case *Petition:
		*d = *src.(*Petition)
	case *Poll:
		*d = *src.(*Poll)
	case *Project:
		*d = *src.(*Project)
	default:
		return fmt.Errorf("apply fields: unsupported item %T", dst)
	}
	return nil
}
