package agentcard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// Document is the agent card as returned by discovery. Every property is
// optional; Decode fills the declared defaults.
type Document struct {
	A2AVersion         string          `json:"a2aVersion,omitempty"`
	ProtocolVersion    string          `json:"protocolVersion,omitempty"`
	ID                 string          `json:"id,omitempty"`
	AgentID            string          `json:"agent_id,omitempty"`
	Name               string          `json:"name,omitempty"`
	Description        string          `json:"description,omitempty"`
	Version            string          `json:"version,omitempty"`
	URL                string          `json:"url,omitempty"`
	Capabilities       Capabilities    `json:"capabilities,omitempty"`
	DefaultInputModes  []string        `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string        `json:"defaultOutputModes,omitempty"`
	Skills             []Skill         `json:"skills,omitempty"`
	Authentication     *Authentication `json:"authentication,omitempty"`
	Privacy            *Privacy        `json:"privacy,omitempty"`
	Metadata           *Metadata       `json:"metadata,omitempty"`
	Provider           *Provider       `json:"provider,omitempty"`
	DocumentationURL   string          `json:"documentationUrl,omitempty"`
	Tags               []string        `json:"tags,omitempty"`
	Price              Number          `json:"price,omitempty"`
	Currency           string          `json:"currency,omitempty" jsonschema:"default=USD"`
	SLA                Number          `json:"sla,omitempty"`
	Domain             string          `json:"domain,omitempty" jsonschema:"default=General"`
}

// Provider is the A2A provider block. Used as a fallback for metadata.
type Provider struct {
	Organization string `json:"organization,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Form converts the document to a registration form. Missing values take
// their defaults and lists are never nil.
func (d Document) Form() Form {
	f := NewForm()

	f.A2AVersion = firstNonEmpty(d.A2AVersion, d.ProtocolVersion)
	f.AgentID = firstNonEmpty(d.AgentID, d.ID)
	f.Name = d.Name
	f.Description = d.Description
	f.Version = d.Version
	f.URL = d.URL
	f.Capabilities = cloneStrings(d.Capabilities)
	f.DefaultInputModes = cloneStrings(d.DefaultInputModes)
	f.DefaultOutputModes = cloneStrings(d.DefaultOutputModes)
	f.Tags = cloneStrings(d.Tags)

	f.Skills = make([]Skill, 0, len(d.Skills))
	for _, s := range d.Skills {
		s.Tags = cloneStrings(s.Tags)
		f.Skills = append(f.Skills, s)
	}

	if d.Authentication != nil {
		f.Authentication = *d.Authentication
	}
	if d.Privacy != nil {
		f.Privacy = *d.Privacy
	}
	if d.Metadata != nil {
		f.Metadata = *d.Metadata
	}
	if d.Provider != nil && f.Metadata.Author == "" {
		f.Metadata.Author = d.Provider.Organization
	}
	if d.Provider != nil && f.Metadata.Website == "" {
		f.Metadata.Website = d.Provider.URL
	}
	if f.Metadata.Documentation == "" {
		f.Metadata.Documentation = d.DocumentationURL
	}

	if d.Price != "" {
		f.Price = string(d.Price)
	}
	if d.SLA != "" {
		f.SLA = string(d.SLA)
	}
	if d.Currency != "" {
		f.Currency = d.Currency
	}
	if d.Domain != "" {
		f.Domain = d.Domain
	}
	return f
}

// Capabilities is a list of capability names. On the wire it is either a
// list of strings or an A2A capabilities object, in which case the keys
// set to true are kept in sorted order.
type Capabilities []string

// UnmarshalJSON accepts both wire forms.
func (c *Capabilities) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		names := make([]string, 0, len(obj))
		for k, v := range obj {
			if on, ok := v.(bool); ok && on {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		*c = names
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// JSONSchema describes both wire forms.
func (Capabilities) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			{Type: "object"},
		},
	}
}

// Number holds the text of a numeric value that may arrive as a JSON
// number or a numeric string.
type Number string

// UnmarshalJSON accepts a number or a string.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		*n = Number(num.String())
	}
	return nil
}

// JSONSchema describes both wire forms.
func (Number) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "string"},
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
