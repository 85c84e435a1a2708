package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/execshell"
)

// Probe invokes "<execPath> swd_info" via out, reads its stdout, and parses
// and validates the resulting JSON (spec §6). unitName prefixes every
// returned error, per spec §6's "each failure produces a specific message
// prefixed by the unit name".
func Probe(ctx context.Context, out execshell.Outputter, execPath, unitName string) (*Info, error) {
	raw, err := out.Output(ctx, execPath+" swd_info")
	if err != nil {
		return nil, &ExecError{Unit: unitName, Err: err}
	}

	return Parse(bytes.NewReader(raw), unitName)
}

// Parse decodes and validates one unit's info JSON from r.
func Parse(r io.Reader, unitName string) (*Info, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var info Info
	if err := dec.Decode(&info); err != nil {
		return nil, &ParseError{Unit: unitName, Msg: err.Error()}
	}

	if err := validate(&info, unitName); err != nil {
		return nil, err
	}

	return &info, nil
}

func validate(info *Info, unitName string) error {
	for name, spec := range info.Artifacts {
		if spec.Type != "file" && spec.Type != "directory" {
			return &SchemaError{Unit: unitName, Field: fmt.Sprintf("artifacts[%s].type", name), Msg: `must be "file" or "directory"`}
		}
		if spec.Path == "" {
			return &SchemaError{Unit: unitName, Field: fmt.Sprintf("artifacts[%s].path", name), Msg: "required field is missing"}
		}
	}

	for i, step := range info.Steps {
		if step.Name == "" {
			return &SchemaError{Unit: unitName, Field: fmt.Sprintf("steps[%d].name", i), Msg: "required field is missing"}
		}
		for _, flag := range step.Flags {
			if flag != "always" && flag != "sudo" {
				return &SchemaError{Unit: unitName, Field: fmt.Sprintf("steps[%d].flags", i), Msg: fmt.Sprintf("unknown flag %q", flag)}
			}
		}
		for artName, linkStr := range step.Artifacts {
			if _, err := artifact.ParseLinkType(linkStr); err != nil {
				return &SchemaError{Unit: unitName, Field: fmt.Sprintf("steps[%d].artifacts[%s]", i, artName), Msg: err.Error()}
			}
		}
		for j, dep := range step.Dependencies {
			if err := validateDep(dep, fmt.Sprintf("steps[%d].dependencies[%d]", i, j), unitName); err != nil {
				return err
			}
		}
	}

	for stepName, rule := range info.Rules {
		if rule.Dependencies == nil {
			return &SchemaError{Unit: unitName, Field: fmt.Sprintf("rules[%s].dependencies", stepName), Msg: "required field is missing"}
		}
		for j, dep := range rule.Dependencies {
			if err := validateDep(dep, fmt.Sprintf("rules[%s].dependencies[%d]", stepName, j), unitName); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateDep(dep DepSpec, field, unitName string) error {
	if dep.ID == "" {
		return &SchemaError{Unit: unitName, Field: field + ".id", Msg: "required field is missing"}
	}

	switch dep.Type {
	case "artifact":
		return nil
	case "data":
		return nil
	case "file":
		if dep.Path == "" {
			return &SchemaError{Unit: unitName, Field: field + ".path", Msg: "required field is missing"}
		}
		return nil
	default:
		return &SchemaError{Unit: unitName, Field: field + ".type", Msg: `must be "artifact", "data", or "file"`}
	}
}
