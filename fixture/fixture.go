// Package fixture loads YAML fixtures into the tables of registered joli
// models.
//
// A fixture document maps table names to lists of rows:
//
//	users:
//	  - id: 1
//	    name: Ann
//	  - name: Bob
//	posts:
//	  - user_id: 1
//	    title: Hello
//
// Tables are loaded in document order through joli.Model.Load, so rows
// with a known identity update the stored record and other rows are
// inserted.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/joli"
)

// Table holds the rows of one table.
type Table struct {
	Name string
	Rows []map[string]any
}

// Fixture is a list of tables in document order.
type Fixture struct {
	Tables []Table
}

// UnmarshalYAML implements yaml.Unmarshaler for Fixture.
func (f *Fixture) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fixture: line %d: expected a mapping of tables", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("fixture: line %d: duplicate table %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		t := Table{Name: key.Value}
		if err := value.Decode(&t.Rows); err != nil {
			return fmt.Errorf("fixture: table %q: %w", key.Value, err)
		}
		f.Tables = append(f.Tables, t)
	}
	return nil
}

// Decode reads a fixture from r. An empty document is an empty fixture.
func Decode(r io.Reader) (*Fixture, error) {
	f := &Fixture{}
	if err := yaml.NewDecoder(r).Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return f, nil
}

// ReadFile reads the fixture file at path.
func ReadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file)
}

// Load loads every table of f into the model registered for it. All
// tables are checked before any row is written.
func Load(ctx context.Context, client *joli.Client, f *Fixture, opts joli.LoadOptions) error {
	models := make([]*joli.Model, len(f.Tables))
	for i, t := range f.Tables {
		if models[i] = client.Model(t.Name); models[i] == nil {
			return fmt.Errorf("fixture: no model registered for table %q", t.Name)
		}
	}
	for i, t := range f.Tables {
		if err := models[i].Load(ctx, t.Rows, opts, nil); err != nil {
			return fmt.Errorf("fixture: load %s: %w", t.Name, err)
		}
	}
	return nil
}

// LoadFile reads the fixture file at path and loads it.
func LoadFile(ctx context.Context, client *joli.Client, path string, opts joli.LoadOptions) error {
	f, err := ReadFile(path)
	if err != nil {
		return err
	}
	return Load(ctx, client, f, opts)
}
