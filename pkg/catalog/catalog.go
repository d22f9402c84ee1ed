// Package catalog loads documents of named formulas. A catalog is YAML (or
// JSON, which YAML reads as well) mapping names to formula text:
//
//	ratio: d.TOTALVALUE / d.BUILDINGVALUE
//	noisy:
//	  formula: d.TOTALVALUE + rnorm(seed=3)
//	  description: value with noise
//
// The same mapping may instead sit under a top-level "formulas" key. Every
// entry is parsed, and all failures are reported together.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/record-formula/pkg/formula"
)

// MaxSourceSize is the maximum catalog document size in bytes (1 MiB).
const MaxSourceSize = 1 << 20

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidName reports whether name can identify a formula.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Entry is one successfully parsed formula.
type Entry struct {
	Name        string
	Source      string
	Description string
	Line        int
	Column      int
	Expr        formula.Expr
}

// Catalog holds the parsed entries of one document in document order.
type Catalog struct {
	File    string
	Entries []*Entry
}

// Lookup returns the entry with the given name.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Names returns the entry names in document order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		names[i] = e.Name
	}
	return names
}

// LoadFile reads and parses a catalog file. Errors carry the file name.
func LoadFile(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err == nil && info.Size() > MaxSourceSize {
		err = fmt.Errorf("catalog size %d exceeds maximum %d bytes", info.Size(), MaxSourceSize)
	}
	var data []byte
	if err == nil {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		el := &ErrorList{}
		el.Add(&Error{Type: ErrorTypeIO, File: path, Message: err.Error(), Err: err})
		return nil, el
	}
	return parse(path, data)
}

// Parse parses a catalog document. When only some entries fail, the
// returned catalog holds the good ones and the error is an *ErrorList
// describing the rest. A document that cannot be read as a whole returns a
// nil catalog.
func Parse(source []byte) (*Catalog, error) {
	return parse("", source)
}

func parse(file string, source []byte) (*Catalog, error) {
	el := &ErrorList{}
	fail := func(line, col int, format string, args ...any) (*Catalog, error) {
		el.Add(&Error{Type: ErrorTypeStructural, File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...)})
		return nil, el
	}

	if len(source) > MaxSourceSize {
		return fail(0, 0, "catalog size %d exceeds maximum %d bytes", len(source), MaxSourceSize)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		el.Add(&Error{Type: ErrorTypeSyntax, File: file, Message: fmt.Sprintf("invalid YAML: %v", err), Err: err})
		return nil, el
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fail(0, 0, "empty catalog")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fail(root.Line, root.Column, "catalog must be a mapping of formula names")
	}
	if nested := formulasSection(root); nested != nil {
		if nested.Kind != yaml.MappingNode {
			return fail(nested.Line, nested.Column, `"formulas" must be a mapping of formula names`)
		}
		root = nested
	}

	cat := &Catalog{File: file}
	seen := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value

		entryErr := func(typ ErrorType, msg string, err error) {
			el.Add(&Error{Type: typ, File: file, Name: name, Line: keyNode.Line, Column: keyNode.Column, Message: msg, Err: err})
		}

		if !ValidName(name) {
			entryErr(ErrorTypeStructural, fmt.Sprintf("invalid formula name %q", name), nil)
			continue
		}
		if line, dup := seen[name]; dup {
			entryErr(ErrorTypeStructural, fmt.Sprintf("duplicate formula name, first defined on line %d", line), nil)
			continue
		}
		seen[name] = keyNode.Line

		source, description, err := entryText(valNode)
		if err != nil {
			entryErr(ErrorTypeStructural, err.Error(), nil)
			continue
		}

		expr, err := formula.ParseExpr(source)
		if err != nil {
			entryErr(ErrorTypeFormula, err.Error(), err)
			continue
		}

		cat.Entries = append(cat.Entries, &Entry{
			Name:        name,
			Source:      source,
			Description: description,
			Line:        keyNode.Line,
			Column:      keyNode.Column,
			Expr:        expr,
		})
	}
	return cat, el.ToError()
}

// formulasSection returns the value of a top-level "formulas" key when it is
// not a plain formula entry.
func formulasSection(root *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "formulas" && root.Content[i+1].Kind != yaml.ScalarNode {
			return root.Content[i+1]
		}
	}
	return nil
}

// entryText extracts formula text and description from an entry value:
// either a scalar, or a mapping with "formula" and optional "description".
func entryText(node *yaml.Node) (source, description string, err error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			return "", "", errors.New("empty formula")
		}
		return node.Value, "", nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return "", "", fmt.Errorf("field %q must be a string", key)
			}
			switch key {
			case "formula":
				source = val.Value
			case "description":
				description = val.Value
			default:
				return "", "", fmt.Errorf("unknown field %q", key)
			}
		}
		if source == "" {
			return "", "", errors.New(`missing "formula" field`)
		}
		return source, description, nil

	default:
		return "", "", errors.New("entry must be a formula string or a mapping with a formula field")
	}
}
