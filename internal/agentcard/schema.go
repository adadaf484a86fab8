package agentcard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// InvalidCardError lists schema violations of a discovery document.
type InvalidCardError struct {
	Violations []string
}

func (e *InvalidCardError) Error() string {
	return "invalid agent card: " + strings.Join(e.Violations, "; ")
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		DoNotReference: true,
	}
}

// DiscoverySchema returns the JSON schema of the discovery document. All
// properties are optional, unknown properties are allowed, and defaults
// are declared for every property Decode fills.
func DiscoverySchema() *jsonschema.Schema {
	r := newReflector()
	r.AllowAdditionalProperties = true
	r.RequiredFromJSONSchemaTags = true

	s := r.Reflect(&Document{})
	s.Title = "WAU agent card"
	s.Description = "Agent card returned by POST /discover"

	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Type == "array" && pair.Value.Default == nil {
			pair.Value.Default = []any{}
		}
	}
	if p, ok := s.Properties.Get("price"); ok {
		p.Default = 0
	}
	if p, ok := s.Properties.Get("sla"); ok {
		p.Default = 0.99
	}
	return s
}

// RegistrationSchema returns the JSON schema of the registration record.
// Every property is required and unknown properties are rejected.
func RegistrationSchema() *jsonschema.Schema {
	s := newReflector().Reflect(&Registration{})
	s.Title = "WAU agent registration"
	s.Description = "Request body of POST /register"
	return s
}

type compiled struct {
	once    sync.Once
	build   func() *jsonschema.Schema
	schema  *gojsonschema.Schema
	source  *jsonschema.Schema
	initErr error
}

func (c *compiled) get() (*gojsonschema.Schema, *jsonschema.Schema, error) {
	c.once.Do(func() {
		c.source = c.build()
		// gojsonschema does not understand draft 2020-12 identifiers
		stripped := *c.source
		stripped.Version = ""
		c.schema, c.initErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(&stripped))
	})
	return c.schema, c.source, c.initErr
}

var (
	discoveryValidator    = &compiled{build: DiscoverySchema}
	registrationValidator = &compiled{build: RegistrationSchema}
)

// strictProperties are never coerced.
var strictProperties = map[string]bool{"name": true, "description": true}

// Decode validates a raw discovery document against DiscoverySchema,
// fills declared defaults, and returns the typed form. JSON nulls are
// treated as absent. Numbers and booleans in optional string properties
// (e.g. "version": 1) are converted to their JSON text first.
func Decode(raw []byte) (Form, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Form{}, &InvalidCardError{Violations: []string{"invalid JSON: " + err.Error()}}
	}
	doc = dropNulls(doc)

	validator, source, err := discoveryValidator.get()
	if err != nil {
		return Form{}, fmt.Errorf("failed to compile discovery schema: %w", err)
	}
	obj, isObject := doc.(map[string]any)
	if isObject {
		coerceScalars(obj, source)
	}
	if err := validate(validator, doc); err != nil {
		return Form{}, err
	}
	if !isObject {
		return Form{}, &InvalidCardError{Violations: []string{"agent card must be a JSON object"}}
	}
	for pair := source.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := obj[pair.Key]; !ok && pair.Value.Default != nil {
			obj[pair.Key] = pair.Value.Default
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return Form{}, fmt.Errorf("failed to encode agent card: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Form{}, &InvalidCardError{Violations: []string{err.Error()}}
	}
	return d.Form(), nil
}

// ValidateRegistration checks a raw registration request body against
// RegistrationSchema.
func ValidateRegistration(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &InvalidCardError{Violations: []string{"invalid JSON: " + err.Error()}}
	}
	validator, _, err := registrationValidator.get()
	if err != nil {
		return fmt.Errorf("failed to compile registration schema: %w", err)
	}
	return validate(validator, doc)
}

func validate(schema *gojsonschema.Schema, doc any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &InvalidCardError{Violations: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &InvalidCardError{Violations: violations}
}

// coerceScalars rewrites numbers and booleans held by string-typed
// properties of schema as strings.
func coerceScalars(obj map[string]any, schema *jsonschema.Schema) {
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Type != "string" || strictProperties[pair.Key] {
			continue
		}
		switch v := obj[pair.Key].(type) {
		case json.Number:
			obj[pair.Key] = v.String()
		case bool:
			obj[pair.Key] = strconv.FormatBool(v)
		}
	}
}

// dropNulls removes null members from objects and null elements from
// arrays, recursively.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(val)
		}
		return t
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val != nil {
				out = append(out, dropNulls(val))
			}
		}
		return out
	default:
		return v
	}
}

// LoadFile reads an agent card from a local JSON or YAML file and decodes
// it like a discovery response.
func LoadFile(path string) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("failed to read agent card: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Form{}, &InvalidCardError{Violations: []string{"invalid YAML: " + err.Error()}}
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return Form{}, &InvalidCardError{Violations: []string{err.Error()}}
		}
	}
	return Decode(data)
}
