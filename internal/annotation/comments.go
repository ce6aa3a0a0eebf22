package annotation

import (
	"regexp"
	"strings"
)

var (
	tagPattern      = regexp.MustCompile(`^@(openapi|swagger)(\s|$)`)
	otherTagPattern = regexp.MustCompile(`^@[A-Za-z]`)
)

type commentLine struct {
	no   int
	text string
}

// comment is either a /** ... */ block or a run of consecutive // lines.
type comment struct {
	lineComment bool
	lines       []commentLine
}

func (c *comment) add(no int, text string) {
	c.lines = append(c.lines, commentLine{no: no, text: text})
}

// fragment is the YAML body following an @openapi or @swagger tag.
type fragment struct {
	line int
	body string
}

func scanComments(src string) []comment {
	var (
		out     []comment
		cur     *comment
		inBlock bool
	)

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for i, raw := range strings.Split(src, "\n") {
		raw = strings.TrimRight(raw, "\r")
		no := i + 1

		if inBlock {
			if end := strings.Index(raw, "*/"); end >= 0 {
				cur.add(no, stripStar(raw[:end]))
				flush()
				inBlock = false
			} else {
				cur.add(no, stripStar(raw))
			}
			continue
		}

		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "//") {
			if cur == nil || !cur.lineComment {
				flush()
				cur = &comment{lineComment: true}
			}
			cur.add(no, strings.TrimPrefix(trimmed, "//"))
			continue
		}
		flush()

		start := strings.Index(raw, "/**")
		if start < 0 || strings.HasPrefix(raw[start:], "/**/") {
			continue
		}
		rest := raw[start+3:]
		cur = &comment{}
		if end := strings.Index(rest, "*/"); end >= 0 {
			cur.add(no, rest[:end])
			flush()
			continue
		}
		cur.add(no, rest)
		inBlock = true
	}
	flush()

	return out
}

// stripStar removes the leading " * " decoration of a block comment line.
func stripStar(s string) string {
	t := strings.TrimLeft(s, " \t")
	if strings.HasPrefix(t, "*") {
		return t[1:]
	}
	return s
}

func (c comment) fragments() []fragment {
	var (
		out   []fragment
		line  int
		lines []string
		open  bool
	)

	closeFragment := func() {
		if open {
			out = append(out, fragment{line: line, body: dedent(lines)})
		}
		open = false
		lines = nil
	}

	for _, l := range c.lines {
		t := strings.TrimSpace(l.text)
		if loc := tagPattern.FindStringIndex(t); loc != nil {
			closeFragment()
			open = true
			line = l.no
			if rest := strings.TrimSpace(t[loc[1]:]); rest != "" {
				lines = append(lines, rest)
			}
			continue
		}
		if otherTagPattern.MatchString(t) {
			closeFragment()
			continue
		}
		if open {
			lines = append(lines, l.text)
		}
	}
	closeFragment()

	return out
}

func extractFragments(src string) []fragment {
	var out []fragment
	for _, c := range scanComments(src) {
		out = append(out, c.fragments()...)
	}
	return out
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return strings.Join(lines, "\n")
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= common && strings.TrimSpace(l[:common]) == "" {
			out[i] = l[common:]
		} else {
			out[i] = strings.TrimLeft(l, " ")
		}
	}
	return strings.Join(out, "\n")
}
