// Package schema loads notebook schema definitions from YAML and exposes
// the embedded master schema that ships with the binary.
package schema

import (
	"fmt"
	"os"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

//go:embed master_notebook.yaml
var masterNotebookYAML []byte

type fileSchema struct {
	ID    string     `yaml:"id"`
	Types []fileType `yaml:"types"`
}

type fileType struct {
	Type   string      `yaml:"type"`
	Fields []fileField `yaml:"fields"`
}

type fileField struct {
	Name      string `yaml:"name"`
	ValueType string `yaml:"value_type"`
	Multi     bool   `yaml:"multi"`
	Required  bool   `yaml:"required"`
}

// Master returns the embedded master notebook schema. The embedded file is
// validated at startup; a malformed build is unusable, so failures are
// returned for the caller to treat as fatal.
func Master() (*domain.Schema, error) {
	return parse(masterNotebookYAML)
}

// LoadFile reads and validates a schema definition from disk, for
// deployments that override the embedded master.
func LoadFile(path string) (*domain.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	s, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return s, nil
}

func parse(raw []byte) (*domain.Schema, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(raw, &fs); err != nil {
		return nil, fmt.Errorf("%w: decoding schema yaml: %v", domain.ErrSchemaInvalid, err)
	}

	defs := make([]domain.TypeDef, 0, len(fs.Types))
	for _, ft := range fs.Types {
		fields := make([]domain.FieldDef, 0, len(ft.Fields))
		for _, ff := range ft.Fields {
			fields = append(fields, domain.FieldDef{
				Name:      ff.Name,
				ValueType: ff.ValueType,
				Multi:     ff.Multi,
				Required:  ff.Required,
			})
		}
		defs = append(defs, domain.TypeDef{
			Type:   domain.SnapshotType(ft.Type),
			Fields: fields,
		})
	}

	return domain.NewSchema(fs.ID, defs)
}
