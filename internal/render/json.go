// Package render serializes YAML node trees as JSON without losing key order.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.yaml.in/yaml/v4"
)

const maxDepth = 512

var ErrTooDeep = errors.New("document nested too deeply")

// JSON renders node as JSON. Mapping keys keep document order; a repeated key
// keeps its first position and its last value. An empty indent produces
// compact output.
func JSON(node *yaml.Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, node, 0); err != nil {
		return nil, err
	}
	if indent == "" {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, fmt.Errorf("indenting JSON: %w", err)
	}
	return out.Bytes(), nil
}

func encode(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return encode(buf, n.Content[0], depth+1)
	case yaml.AliasNode:
		return encode(buf, n.Alias, depth+1)
	case yaml.MappingNode:
		return encodeMapping(buf, n, depth)
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return encodeScalar(buf, n)
	default:
		return fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func encodeMapping(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	var order []string
	values := make(map[string]*yaml.Node)
	if err := collectPairs(n, &order, values, depth); err != nil {
		return err
	}

	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encode(buf, values[key], depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// collectPairs flattens a mapping, expanding YAML merge keys (<<). Explicit
// keys win over merged ones.
func collectPairs(n *yaml.Node, order *[]string, values map[string]*yaml.Node, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}

	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := resolve(n.Content[i])
		val := n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			merges = append(merges, val)
			continue
		}
		if _, ok := values[key.Value]; !ok {
			*order = append(*order, key.Value)
		}
		values[key.Value] = val
	}

	for _, m := range merges {
		m = resolve(m)
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			src = resolve(src)
			if src.Kind != yaml.MappingNode {
				return fmt.Errorf("merge key at line %d must reference a mapping", m.Line)
			}
			var subOrder []string
			sub := make(map[string]*yaml.Node)
			if err := collectPairs(src, &subOrder, sub, depth+1); err != nil {
				return err
			}
			for _, k := range subOrder {
				if _, ok := values[k]; !ok {
					*order = append(*order, k)
					values[k] = sub[k]
				}
			}
		}
	}
	return nil
}

func encodeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.WriteString(fmt.Sprint(b))
	case "!!int":
		var v any
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		return writeValue(buf, v)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			buf.WriteString("null")
			return nil
		}
		return writeValue(buf, f)
	default:
		return writeString(buf, n.Value)
	}
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
