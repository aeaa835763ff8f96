package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"

	"quiz-records/internal/records"
)

var (
	errMalformedBody = errors.New("invalid JSON body")
	errNotObject     = errors.New("request body must be a JSON object")
	errMissingFields = errors.New("missing required fields: name, program")
	errEmptyFields   = errors.New("fields cannot be empty")
)

// parseStudentInput accepts a flat JSON object. Nested objects and arrays are
// rejected wherever they appear; name and program must be non-empty strings.
// Unknown scalar fields are ignored.
func parseStudentInput(body []byte) (records.StudentInput, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return records.StudentInput{}, errMalformedBody
	}

	parsed, err := oj.Parse(body)
	if err != nil {
		return records.StudentInput{}, errMalformedBody
	}
	object, ok := parsed.(map[string]any)
	if !ok {
		return records.StudentInput{}, errNotObject
	}

	fields := make(map[string]string, len(object))
	for key, value := range object {
		switch typed := value.(type) {
		case string:
			fields[key] = typed
		case map[string]any, []any:
			return records.StudentInput{}, fmt.Errorf("field %q: nested values are not supported", key)
		default:
			if key == "name" || key == "program" {
				return records.StudentInput{}, fmt.Errorf("field %q must be a string", key)
			}
		}
	}

	name, hasName := fields["name"]
	program, hasProgram := fields["program"]
	if !hasName || !hasProgram {
		return records.StudentInput{}, errMissingFields
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(program) == "" {
		return records.StudentInput{}, errEmptyFields
	}

	return records.StudentInput{Name: name, Program: program}, nil
}
