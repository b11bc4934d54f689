// Package validation implements the optional per-route request guard: a
// JSON Schema over the request body plus simple header rules. The server
// checks compiled rules before applying a route's handler and answers 422
// when they fail.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/mockxhr/pkg/headers"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// RequestRules declares what a route requires of incoming requests. The
// zero value accepts everything.
type RequestRules struct {
	// BodySchema is an inline JSON Schema (draft 2020-12) applied to the
	// request body decoded as JSON.
	BodySchema map[string]any `json:"bodySchema,omitempty" yaml:"bodySchema,omitempty"`

	// Headers are per-header presence and value rules.
	Headers []HeaderRule `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// HeaderRule constrains one request header.
type HeaderRule struct {
	// Name is the header name, matched case-insensitively.
	Name string `json:"name" yaml:"name"`

	// Required fails the request when the header is absent.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Equals fails the request when the header is present with a different
	// value. Combine with Required to also demand presence.
	Equals string `json:"equals,omitempty" yaml:"equals,omitempty"`
}

// IsEmpty reports whether the rules constrain anything.
func (r *RequestRules) IsEmpty() bool {
	return r == nil || (r.BodySchema == nil && len(r.Headers) == 0)
}

// Compile validates the rules and compiles the body schema. Routes compile
// their rules once at registration so schema errors surface there, not per
// request.
func (r *RequestRules) Compile() (*CompiledRules, error) {
	if r.IsEmpty() {
		return nil, nil
	}

	for i, rule := range r.Headers {
		if rule.Name == "" {
			return nil, fmt.Errorf("header rule %d: empty name", i)
		}
		if !headers.IsToken(rule.Name) {
			return nil, fmt.Errorf("header rule %d: invalid name %q", i, rule.Name)
		}
	}

	c := &CompiledRules{headers: r.Headers}
	if r.BodySchema != nil {
		schema, err := compileSchema(r.BodySchema)
		if err != nil {
			return nil, fmt.Errorf("compiling body schema: %w", err)
		}
		c.schema = schema
	}
	return c, nil
}

// compileSchema compiles an inline schema map with draft 2020-12 semantics.
func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", strings.NewReader(string(data))); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// CompiledRules is the ready-to-check form of RequestRules. A nil
// *CompiledRules accepts everything.
type CompiledRules struct {
	schema  *jsonschema.Schema
	headers []HeaderRule
}

// Check validates a sent request against the rules. It returns nil on
// success and a *RuleError naming the offending field otherwise. Header
// rules are checked before the body schema.
func (c *CompiledRules) Check(req *xhr.RequestData) error {
	if c == nil {
		return nil
	}

	for _, rule := range c.headers {
		value, ok := req.Header(rule.Name)
		if !ok {
			if rule.Required {
				return &RuleError{Field: rule.Name, Detail: "required header missing"}
			}
			continue
		}
		if rule.Equals != "" && value != rule.Equals {
			return &RuleError{
				Field:  rule.Name,
				Detail: fmt.Sprintf("header value %q does not match expected %q", value, rule.Equals),
			}
		}
	}

	if c.schema != nil {
		data, err := decodeBody(req.Body())
		if err != nil {
			return &RuleError{Field: "body", Detail: err.Error()}
		}
		if err := c.schema.Validate(data); err != nil {
			return ruleErrorFromSchema(err)
		}
	}
	return nil
}

// decodeBody decodes a string or []byte body as JSON. Already-structured
// bodies (maps, slices) pass through unchanged.
func decodeBody(body any) (any, error) {
	var raw []byte
	switch b := body.(type) {
	case nil:
		return nil, fmt.Errorf("request body is missing")
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		return body, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return data, nil
}

// ruleErrorFromSchema converts a jsonschema validation error into a
// RuleError naming the deepest failing field.
func ruleErrorFromSchema(err error) *RuleError {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &RuleError{Field: "body", Detail: err.Error()}
	}

	// Walk to the most specific cause.
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := fieldFromInstanceLocation(ve.InstanceLocation)
	if field == "" {
		field = "body"
	}
	return &RuleError{Field: field, Detail: ve.Message}
}

// fieldFromInstanceLocation converts a JSON Pointer path to dot notation.
func fieldFromInstanceLocation(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}

// RuleError reports one failed request rule.
type RuleError struct {
	// Field is the header name or body field (dot notation) that failed.
	Field string `json:"field"`

	// Detail is a human-readable description of the failure.
	Detail string `json:"detail"`
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Detail)
	}
	return e.Detail
}
