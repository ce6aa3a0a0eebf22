package annotation

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"
)

// rootFields are the top-level OpenAPI 3 and Swagger 2 fields. Any other
// fragment key is a path item.
var rootFields = map[string]bool{
	"openapi":             true,
	"swagger":             true,
	"info":                true,
	"jsonSchemaDialect":   true,
	"servers":             true,
	"host":                true,
	"basePath":            true,
	"schemes":             true,
	"consumes":            true,
	"produces":            true,
	"paths":               true,
	"webhooks":            true,
	"components":          true,
	"definitions":         true,
	"parameters":          true,
	"responses":           true,
	"securityDefinitions": true,
	"security":            true,
	"tags":                true,
	"externalDocs":        true,
}

// Document is an OpenAPI document under construction. Root is an ordered
// mapping node; key order is the order in which keys were first merged.
type Document struct {
	Root      *yaml.Node
	Sources   []string
	Fragments int
	Warnings  []string
}

// NewDocument wraps base, which must be a mapping (or a document holding one).
// base is modified in place by later merges.
func NewDocument(base *yaml.Node) (*Document, error) {
	if base == nil {
		return &Document{Root: Map()}, nil
	}
	if base.Kind == yaml.DocumentNode && len(base.Content) > 0 {
		base = base.Content[0]
	}
	if base.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("base definition: %w", ErrNotMapping)
	}
	return &Document{Root: base}, nil
}

// Lookup returns the value stored under key, or nil.
func (d *Document) Lookup(key string) *yaml.Node {
	if i := mappingIndex(d.Root, key); i >= 0 {
		return d.Root.Content[i+1]
	}
	return nil
}

// Set replaces the value under key, appending the key when absent.
func (d *Document) Set(key string, value *yaml.Node) {
	if i := mappingIndex(d.Root, key); i >= 0 {
		d.Root.Content[i+1] = value
		return
	}
	d.Root.Content = append(d.Root.Content, Str(key), value)
}

// Merge deep-merges a mapping fragment into the document. Keys that are not
// root fields or x- extensions, such as "/swap", are merged into paths.
func (d *Document) Merge(frag *yaml.Node) {
	for i := 0; i+1 < len(frag.Content); i += 2 {
		key, val := frag.Content[i], frag.Content[i+1]
		if rootFields[key.Value] || strings.HasPrefix(key.Value, "x-") {
			mergeMappings(d.Root, Map(key, val))
			continue
		}
		mergeMappings(d.paths(), Map(key, val))
	}
	d.Fragments++
}

// paths returns the paths mapping, creating it when missing.
func (d *Document) paths() *yaml.Node {
	if i := mappingIndex(d.Root, "paths"); i >= 0 {
		if p := resolve(d.Root.Content[i+1]); p.Kind == yaml.MappingNode {
			if p != d.Root.Content[i+1] {
				p = cloneShallow(p)
				d.Root.Content[i+1] = p
			}
			return p
		}
	}
	p := Map()
	d.Set("paths", p)
	return p
}

func (d *Document) warn(err error) {
	d.Warnings = append(d.Warnings, err.Error())
}

// prepare seeds the containers every generated document carries, ahead of
// any annotation content.
func (d *Document) prepare() {
	if d.Lookup("paths") == nil {
		d.Set("paths", Map())
	}
	if d.Lookup("components") == nil {
		d.Set("components", Map())
	}
	if d.Lookup("tags") == nil {
		d.Set("tags", Seq())
	}
}

// finalize guarantees a paths object and removes duplicate tags.
func (d *Document) finalize() {
	if paths := d.Lookup("paths"); paths == nil || paths.Kind != yaml.MappingNode {
		d.Set("paths", Map())
	}
	if tags := d.Lookup("tags"); tags != nil && tags.Kind == yaml.SequenceNode {
		tags.Content = uniqueByName(tags.Content)
	}
}

func mergeMappings(dst, src *yaml.Node) {
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, val := src.Content[i], src.Content[i+1]
		j := mappingIndex(dst, key.Value)
		if j < 0 {
			dst.Content = append(dst.Content, key, val)
			continue
		}

		cur := resolve(dst.Content[j+1])
		next := resolve(val)
		switch {
		case cur.Kind == yaml.MappingNode && next.Kind == yaml.MappingNode:
			if cur != dst.Content[j+1] {
				// never write through an alias into its anchor
				cur = cloneShallow(cur)
				dst.Content[j+1] = cur
			}
			mergeMappings(cur, next)
		case cur.Kind == yaml.SequenceNode && next.Kind == yaml.SequenceNode:
			merged := cloneShallow(cur)
			merged.Content = append(merged.Content, next.Content...)
			dst.Content[j+1] = merged
		default:
			dst.Content[j+1] = val
		}
	}
}

func mappingIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func cloneShallow(n *yaml.Node) *yaml.Node {
	c := *n
	c.Anchor = ""
	c.Content = append([]*yaml.Node(nil), n.Content...)
	return &c
}

// uniqueByName keeps the first tag object for every name.
func uniqueByName(items []*yaml.Node) []*yaml.Node {
	seen := make(map[string]bool, len(items))
	out := make([]*yaml.Node, 0, len(items))
	for _, item := range items {
		m := resolve(item)
		if m.Kind == yaml.MappingNode {
			if i := mappingIndex(m, "name"); i >= 0 {
				name := m.Content[i+1].Value
				if seen[name] {
					continue
				}
				seen[name] = true
			}
		}
		out = append(out, item)
	}
	return out
}
