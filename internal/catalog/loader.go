// Package catalog loads the checklist tree from a YAML document and
// validates it before anything else sees it.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/mapcheck/internal/domain"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed map.yaml
var defaultDocument []byte

//go:embed schema.json
var schemaDocument []byte

const schemaURL = "mapcheck://catalog.schema.json"

// Default returns the built-in MAP checklist.
func Default() (*domain.Catalog, error) {
	return Parse(defaultDocument)
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document. Failures wrap
// domain.ErrInvalidCatalog.
func Parse(data []byte) (*domain.Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var c domain.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	c.Index()
	return &c, nil
}

// Validate checks the rules a schema cannot express: phase and item IDs
// are unique and every section carries at least one known variant tag.
func Validate(c *domain.Catalog) error {
	var errs []error
	phaseIDs := map[string]bool{}
	itemIDs := map[string]string{}

	for pi, p := range c.Phases {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("phases[%d]: id is required", pi))
		} else if phaseIDs[p.ID] {
			errs = append(errs, fmt.Errorf("phases[%d]: duplicate phase id %q", pi, p.ID))
		}
		phaseIDs[p.ID] = true

		for si, s := range p.Sections {
			where := fmt.Sprintf("phases[%d].sections[%d]", pi, si)
			if len(s.Applicability) == 0 {
				errs = append(errs, fmt.Errorf("%s: applicability is empty", where))
			}
			for _, tag := range s.Applicability {
				if !domain.ValidApplicability[tag] {
					errs = append(errs, fmt.Errorf("%s: unknown applicability %q", where, tag))
				}
			}
			for ii, it := range s.Items {
				if it.ID == "" {
					errs = append(errs, fmt.Errorf("%s.items[%d]: id is required", where, ii))
					continue
				}
				if prev, dup := itemIDs[it.ID]; dup {
					errs = append(errs, fmt.Errorf("%s.items[%d]: duplicate item id %q (first in phase %s)", where, ii, it.ID, prev))
				}
				itemIDs[it.ID] = p.ID
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

func validateDocument(raw any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	// The validator only understands values shaped like encoding/json output.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, errors.Join(schemaErrors(ve)...))
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDocument)); err != nil {
		return nil, fmt.Errorf("loading catalog schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}
	return schema, nil
}

func schemaErrors(ve *jsonschema.ValidationError) []error {
	if len(ve.Causes) == 0 {
		return []error{fmt.Errorf("%s: %s", pointerPath(ve.InstanceLocation), ve.Message)}
	}
	var errs []error
	for _, cause := range ve.Causes {
		errs = append(errs, schemaErrors(cause)...)
	}
	return errs
}
