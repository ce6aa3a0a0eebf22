package annotation

import (
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v4"
)

const anchorKeyPrefix = "x-swapspec-anchors-"

var unknownAnchor = regexp.MustCompile(`unknown anchor '([^']+)' referenced`)

// anchorSet maps an anchor name to the body of the first fragment defining it.
type anchorSet map[string]string

func (a anchorSet) collect(n *yaml.Node, body string) {
	if n == nil {
		return
	}
	if n.Anchor != "" {
		if _, ok := a[n.Anchor]; !ok {
			a[n.Anchor] = body
		}
	}
	for _, c := range n.Content {
		a.collect(c, body)
	}
}

// resolve reparses body with the fragments defining its unknown anchors
// nested ahead of it. err is returned unchanged when it is not an unknown
// anchor error or the anchors cannot be found.
func (a anchorSet) resolve(body string, err error) (*yaml.Node, error) {
	var prefix []string
	used := make(map[string]bool)

	for cur := err; ; {
		m := unknownAnchor.FindStringSubmatch(cur.Error())
		if m == nil || used[m[1]] {
			return nil, err
		}
		src, ok := a[m[1]]
		if !ok {
			return nil, err
		}
		used[m[1]] = true
		prefix = append([]string{src}, prefix...)

		node, perr := parseFragment(withAnchors(prefix, body))
		if perr == nil {
			return stripAnchorKeys(node), nil
		}
		cur = perr
	}
}

func withAnchors(sources []string, body string) string {
	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "%s%d:\n", anchorKeyPrefix, i)
		for _, line := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteString(body)
	return b.String()
}

// stripAnchorKeys drops the prepended definitions. Aliases in the remaining
// content still point at their nodes.
func stripAnchorKeys(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	kept := make([]*yaml.Node, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.HasPrefix(n.Content[i].Value, anchorKeyPrefix) {
			continue
		}
		kept = append(kept, n.Content[i], n.Content[i+1])
	}
	n.Content = kept
	return n
}
