package candidate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TechStack is a tagged variant: the candidate's technologies arrive either as
// a flat string or as a category-to-list mapping. Flatten is the sole
// consumer of the variant; everything user-facing sees one comma-joined
// string.
type TechStack struct {
	flat       string
	categories map[string][]string
	order      []string
}

// NewFlat wraps a plain comma-separated technology string.
func NewFlat(value string) TechStack {
	return TechStack{flat: strings.TrimSpace(value)}
}

// NewCategorized builds the mapping variant. Key order follows the provided
// order slice; keys missing from it are appended sorted so flattening stays
// deterministic.
func NewCategorized(categories map[string][]string, order []string) TechStack {
	if len(categories) == 0 {
		return TechStack{}
	}

	seen := make(map[string]bool, len(order))
	keys := make([]string, 0, len(categories))
	for _, key := range order {
		if _, ok := categories[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(categories))
	for key := range categories {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	return TechStack{categories: categories, order: keys}
}

// NewCategorizedFromAny converts a loosely-typed mapping (category to list or
// scalar) into the categorized variant.
func NewCategorizedFromAny(data map[string]any) TechStack {
	categories := make(map[string][]string, len(data))
	for key, value := range data {
		switch items := value.(type) {
		case []any:
			list := make([]string, 0, len(items))
			for _, item := range items {
				list = append(list, fmt.Sprintf("%v", item))
			}
			categories[key] = list
		case nil:
			categories[key] = nil
		default:
			categories[key] = []string{fmt.Sprintf("%v", items)}
		}
	}
	return NewCategorized(categories, nil)
}

// IsZero reports whether no tech stack value has been collected yet.
func (t TechStack) IsZero() bool {
	return t.flat == "" && len(t.categories) == 0
}

// Flatten returns the single comma-joined rendering of the stack. Flat values
// pass through unchanged; categorized values concatenate every leaf in key
// order; an absent stack renders as the empty string.
func (t TechStack) Flatten() string {
	if t.flat != "" {
		return t.flat
	}
	if len(t.categories) == 0 {
		return ""
	}

	leaves := make([]string, 0, len(t.categories))
	for _, key := range t.order {
		for _, item := range t.categories[key] {
			if item = strings.TrimSpace(item); item != "" {
				leaves = append(leaves, item)
			}
		}
	}
	return strings.Join(leaves, ", ")
}

// MarshalJSON preserves the collected shape: a string for the flat variant, an
// object in key order for the categorized one, null when absent.
func (t TechStack) MarshalJSON() ([]byte, error) {
	if t.flat != "" {
		return json.Marshal(t.flat)
	}
	if len(t.categories) == 0 {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		items, err := json.Marshal(t.categories[key])
		if err != nil {
			return nil, err
		}
		buf.Write(items)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a string, an object, or null. Object key order is
// captured from the document so flattening matches the original shape.
func (t *TechStack) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*t = TechStack{}
		return nil
	}

	if trimmed[0] == '"' {
		var flat string
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return err
		}
		*t = NewFlat(flat)
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	order, err := objectKeyOrder(trimmed)
	if err != nil {
		return err
	}

	stack := NewCategorizedFromAny(raw)
	*t = NewCategorized(stack.categories, order)
	return nil
}

// objectKeyOrder walks the top-level keys of a JSON object in document order.
func objectKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}

	var keys []string
	depth := 0
	for dec.More() || depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return keys, nil
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		case string:
			if depth == 0 {
				keys = append(keys, v)
				// skip the value belonging to this key
				if err := skipValue(dec); err != nil {
					return keys, nil
				}
			}
		}
	}

	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); ok && (delim == '{' || delim == '[') {
		depth := 1
		for depth > 0 {
			tok, err = dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
