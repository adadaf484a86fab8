// Package agentcard defines the agent registration form, the discovery
// document it is decoded from, and the registration record sent to the
// registry.
package agentcard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wau-ai/wau-cli/internal/currency"
)

// Defaults applied when discovery omits a field.
const (
	DefaultPrice    = "0"
	DefaultSLA      = "0.99"
	DefaultCurrency = currency.Default
	DefaultDomain   = "General"
)

var (
	// ErrRequiredFields is returned when name or description is blank.
	ErrRequiredFields = errors.New("required fields missing")

	// ErrUnknownField is returned by Form.Set for keys that are not editable.
	ErrUnknownField = errors.New("unknown field")
)

// Skill is one advertised agent skill.
type Skill struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Authentication describes how callers authenticate to the agent.
type Authentication struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Privacy describes the agent's data handling.
type Privacy struct {
	DataRetention string `json:"dataRetention"`
	LogPolicy     string `json:"logPolicy"`
}

// Metadata holds publisher information.
type Metadata struct {
	Author        string `json:"author"`
	Website       string `json:"website"`
	Documentation string `json:"documentation"`
	Updated       string `json:"updated"`
}

// Form is the editable registration form. Price and SLA hold the text the
// operator typed and are coerced to numbers only in Registration.
type Form struct {
	A2AVersion         string         `json:"a2aVersion"`
	AgentID            string         `json:"agent_id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Version            string         `json:"version"`
	URL                string         `json:"url"`
	Capabilities       []string       `json:"capabilities"`
	DefaultInputModes  []string       `json:"defaultInputModes"`
	DefaultOutputModes []string       `json:"defaultOutputModes"`
	Skills             []Skill        `json:"skills"`
	Authentication     Authentication `json:"authentication"`
	Privacy            Privacy        `json:"privacy"`
	Metadata           Metadata       `json:"metadata"`
	Tags               []string       `json:"tags"`
	Price              string         `json:"price"`
	Currency           string         `json:"currency"`
	SLA                string         `json:"sla"`
	Domain             string         `json:"domain"`
}

// NewForm returns the empty form the workflow starts with.
func NewForm() Form {
	return Form{
		Capabilities:       []string{},
		DefaultInputModes:  []string{},
		DefaultOutputModes: []string{},
		Skills:             []Skill{},
		Tags:               []string{},
		Price:              DefaultPrice,
		Currency:           DefaultCurrency,
		SLA:                DefaultSLA,
		Domain:             DefaultDomain,
	}
}

// Validate checks the fields required for submission.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Description) == "" {
		return ErrRequiredFields
	}
	return nil
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	out := f
	out.Capabilities = cloneStrings(f.Capabilities)
	out.DefaultInputModes = cloneStrings(f.DefaultInputModes)
	out.DefaultOutputModes = cloneStrings(f.DefaultOutputModes)
	out.Tags = cloneStrings(f.Tags)
	out.Skills = make([]Skill, len(f.Skills))
	for i, s := range f.Skills {
		s.Tags = cloneStrings(s.Tags)
		out.Skills[i] = s
	}
	return out
}

// Field is one editable key and its current value as text.
type Field struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Required bool   `json:"required,omitempty"`
}

// FieldKeys lists the editable keys in display order.
var FieldKeys = []string{
	"name", "description", "url", "version", "agent_id", "a2aVersion",
	"domain", "price", "currency", "sla",
	"capabilities", "tags", "defaultInputModes", "defaultOutputModes",
	"authentication.type", "authentication.description",
	"privacy.dataRetention", "privacy.logPolicy",
	"metadata.author", "metadata.website", "metadata.documentation", "metadata.updated",
}

// Fields returns every editable field with its value.
func (f *Form) Fields() []Field {
	fields := make([]Field, 0, len(FieldKeys))
	for _, key := range FieldKeys {
		fields = append(fields, Field{
			Key:      key,
			Value:    f.Get(key),
			Required: key == "name" || key == "description",
		})
	}
	return fields
}

// Get returns the text value of an editable field. List fields are
// comma-joined. Unknown keys return "".
func (f *Form) Get(key string) string {
	if p := f.stringField(key); p != nil {
		return *p
	}
	if p := f.listField(key); p != nil {
		return strings.Join(*p, ", ")
	}
	return ""
}

// Set updates an editable field from text. List fields take
// comma-separated values.
func (f *Form) Set(key, value string) error {
	if p := f.stringField(key); p != nil {
		*p = value
		return nil
	}
	if p := f.listField(key); p != nil {
		*p = SplitList(value)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, key)
}

func (f *Form) stringField(key string) *string {
	switch key {
	case "a2aVersion":
		return &f.A2AVersion
	case "agent_id":
		return &f.AgentID
	case "name":
		return &f.Name
	case "description":
		return &f.Description
	case "version":
		return &f.Version
	case "url":
		return &f.URL
	case "price":
		return &f.Price
	case "currency":
		return &f.Currency
	case "sla":
		return &f.SLA
	case "domain":
		return &f.Domain
	case "authentication.type":
		return &f.Authentication.Type
	case "authentication.description":
		return &f.Authentication.Description
	case "privacy.dataRetention":
		return &f.Privacy.DataRetention
	case "privacy.logPolicy":
		return &f.Privacy.LogPolicy
	case "metadata.author":
		return &f.Metadata.Author
	case "metadata.website":
		return &f.Metadata.Website
	case "metadata.documentation":
		return &f.Metadata.Documentation
	case "metadata.updated":
		return &f.Metadata.Updated
	}
	return nil
}

func (f *Form) listField(key string) *[]string {
	switch key {
	case "capabilities":
		return &f.Capabilities
	case "tags":
		return &f.Tags
	case "defaultInputModes":
		return &f.DefaultInputModes
	case "defaultOutputModes":
		return &f.DefaultOutputModes
	}
	return nil
}

// SplitList splits comma-separated text into trimmed, non-empty items.
// The result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CoercePrice parses price text. Unparseable, negative or non-finite
// input becomes 0.
func CoercePrice(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// CoerceSLA parses SLA text. Unparseable input or values outside [0,1]
// become 0.99.
func CoerceSLA(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0.99
	}
	return v
}

// Registration builds the request record with price, SLA and currency
// coerced.
func (f Form) Registration() Registration {
	c := f.Clone()
	return Registration{
		A2AVersion:         c.A2AVersion,
		AgentID:            c.AgentID,
		Name:               strings.TrimSpace(c.Name),
		Description:        strings.TrimSpace(c.Description),
		Version:            c.Version,
		URL:                strings.TrimSpace(c.URL),
		Capabilities:       c.Capabilities,
		DefaultInputModes:  c.DefaultInputModes,
		DefaultOutputModes: c.DefaultOutputModes,
		Skills:             c.Skills,
		Authentication:     c.Authentication,
		Privacy:            c.Privacy,
		Metadata:           c.Metadata,
		Tags:               c.Tags,
		Price:              CoercePrice(c.Price),
		Currency:           currency.Normalize(c.Currency),
		SLA:                CoerceSLA(c.SLA),
		Domain:             c.Domain,
	}
}

// Registration is the record sent to POST /register.
type Registration struct {
	A2AVersion         string         `json:"a2aVersion"`
	AgentID            string         `json:"agent_id"`
	Name               string         `json:"name" jsonschema:"minLength=1"`
	Description        string         `json:"description" jsonschema:"minLength=1"`
	Version            string         `json:"version"`
	URL                string         `json:"url"`
	Capabilities       []string       `json:"capabilities"`
	DefaultInputModes  []string       `json:"defaultInputModes"`
	DefaultOutputModes []string       `json:"defaultOutputModes"`
	Skills             []Skill        `json:"skills"`
	Authentication     Authentication `json:"authentication"`
	Privacy            Privacy        `json:"privacy"`
	Metadata           Metadata       `json:"metadata"`
	Tags               []string       `json:"tags"`
	Price              float64        `json:"price" jsonschema:"minimum=0"`
	Currency           string         `json:"currency"`
	SLA                float64        `json:"sla" jsonschema:"minimum=0,maximum=1"`
	Domain             string         `json:"domain"`
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
