// Package discovery runs the autonomous exploration agent over an
// authenticated site and produces the validated catalog of automatable
// actions handed to the server generator.
package discovery

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ParamType is the type of an action parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// validParamType reports whether t is a recognized parameter type.
func validParamType(t ParamType) bool {
	switch t {
	case ParamString, ParamNumber, ParamBoolean:
		return true
	}
	return false
}

// Parameter is one typed input of a discovered action.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
}

// Action is a discovered, automatable site capability: a named,
// parameterized sequence of natural-language steps. Actions are created
// in bulk by one discovery pass and immutable thereafter.
type Action struct {
	// Name uniquely identifies the action within its catalog, in stable
	// token form (letters, digits, underscores, hyphens).
	Name string `json:"name"`

	// Description is the human-readable summary of the capability.
	Description string `json:"description"`

	// Parameters are the action's typed inputs, possibly empty.
	Parameters []Parameter `json:"parameters,omitempty"`

	// Steps are natural-language instruction templates. A step may
	// reference a parameter by name via a {placeholder}.
	Steps []string `json:"steps"`

	// ExtractionSchema describes what structured data the action should
	// retrieve. It is an opaque bag passed through verbatim to the
	// generator and never interpreted here; raw JSON preserves key order.
	ExtractionSchema json.RawMessage `json:"extractionSchema,omitempty"`
}

// Catalog is the discovery pipeline's sole output artifact. It is
// validated as a unit: either every action is well-formed or the whole
// catalog is rejected.
type Catalog struct {
	Actions []Action `json:"actions"`
}

// SchemaValidationError reports a catalog shape violation at a specific
// path, e.g. "actions[1].description".
type SchemaValidationError struct {
	Path   string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed at %s: %s", e.Path, e.Reason)
}

var (
	nameToken   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
)

// Validate checks the catalog against the action schema. The first
// violation found is returned; no partial catalog survives validation.
func (c *Catalog) Validate() error {
	if c.Actions == nil {
		return &SchemaValidationError{Path: "actions", Reason: "missing required field"}
	}

	seen := make(map[string]bool, len(c.Actions))
	for i, action := range c.Actions {
		path := fmt.Sprintf("actions[%d]", i)

		if action.Name == "" {
			return &SchemaValidationError{Path: path + ".name", Reason: "missing required field"}
		}
		if !nameToken.MatchString(action.Name) {
			return &SchemaValidationError{Path: path + ".name", Reason: fmt.Sprintf("%q is not a valid action name token", action.Name)}
		}
		if seen[action.Name] {
			return &SchemaValidationError{Path: path + ".name", Reason: fmt.Sprintf("duplicate action name %q", action.Name)}
		}
		seen[action.Name] = true

		if action.Description == "" {
			return &SchemaValidationError{Path: path + ".description", Reason: "missing required field"}
		}
		if len(action.Steps) == 0 {
			return &SchemaValidationError{Path: path + ".steps", Reason: "at least one step is required"}
		}

		for j, param := range action.Parameters {
			paramPath := fmt.Sprintf("%s.parameters[%d]", path, j)
			if param.Name == "" {
				return &SchemaValidationError{Path: paramPath + ".name", Reason: "missing required field"}
			}
			if !validParamType(param.Type) {
				return &SchemaValidationError{Path: paramPath + ".type", Reason: fmt.Sprintf("%q is not one of string, number, boolean", param.Type)}
			}
		}
	}

	return nil
}

// Warnings reports data-quality defects that do not fail validation.
// Currently: {placeholder} tokens in steps that name no declared
// parameter. These are surfaced to the operator rather than silently
// dropped.
func (c *Catalog) Warnings() []string {
	var warnings []string

	for _, action := range c.Actions {
		declared := make(map[string]bool, len(action.Parameters))
		for _, param := range action.Parameters {
			declared[param.Name] = true
		}

		for i, step := range action.Steps {
			for _, match := range placeholder.FindAllStringSubmatch(step, -1) {
				if !declared[match[1]] {
					warnings = append(warnings, fmt.Sprintf(
						"action %q step %d references undeclared parameter {%s}", action.Name, i+1, match[1]))
				}
			}
		}
	}

	return warnings
}
