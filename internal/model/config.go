package model

import "slices"

// OpenAPIVersion is the version every generated document declares.
const OpenAPIVersion = "3.0.0"

// SpecConfig holds the inputs of a single generation run. It is built once and
// passed by value; Clone is used wherever a copy escapes.
type SpecConfig struct {
	Title        string
	Version      string
	SourceGlobs  []string
	FailOnErrors bool
}

func (c SpecConfig) Clone() SpecConfig {
	c.SourceGlobs = slices.Clone(c.SourceGlobs)
	return c
}
