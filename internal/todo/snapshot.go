package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoSnapshot is returned by persistence ports when the slot holds nothing.
var ErrNoSnapshot = errors.New("no snapshot")

const snapshotSchemaURL = "tasklist.schema.json"

const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "tasklist snapshot",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["number", "title", "isChecked"],
    "properties": {
      "number": {"type": ["integer", "string"]},
      "title": {"type": "string"},
      "isChecked": {"type": "boolean"},
      "dueDate": {"type": "string"}
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString(snapshotSchemaURL, snapshotSchema)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // path to the error location, e.g. "[3].title"
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Err joins the result's errors, or returns nil when the snapshot is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Validate checks raw snapshot bytes against the snapshot schema.
func Validate(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]error, 0),
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("parse snapshot: %w", err),
		})
		return result
	}

	if err := compiledSchema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

// Encode serializes the list as a compact JSON array.
func Encode(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode validates and parses a snapshot. Every decoded task gets a fresh
// in-memory ID.
func Decode(data []byte) (List, error) {
	if err := Validate(data).Err(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if l == nil {
		l = List{}
	}
	for i := range l {
		l[i].ID = uuid.New()
	}
	return l, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
