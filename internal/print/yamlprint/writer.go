// Package yamlprint prints values as YAML documents.
package yamlprint

import (
	"io"

	yaml "gopkg.in/yaml.v3"
)

// Print writes v to w as a YAML document indented with two spaces.
func Print(w io.Writer, v any) error {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	if err := e.Encode(v); err != nil {
		return err
	}
	return e.Close()
}
