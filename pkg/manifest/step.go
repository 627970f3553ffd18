package manifest

import (
	"encoding/json"
	"fmt"
)

// StepKind discriminates the entries of a call format or alias
// pipeline.
type StepKind int

const (
	// StepExecutable expands to the owning component's installed
	// executable inside the active sysroot.
	StepExecutable StepKind = iota

	// StepLibPath expands to the sysroot lib directory.
	StepLibPath

	// StepVarPath expands to the sysroot var directory.
	StepVarPath

	// StepResolve expands to another component's executable, looked
	// up by name in the active channel.
	StepResolve

	// StepVerbatim passes its argument through unchanged.
	StepVerbatim
)

// CommandStep is one entry of a command pipeline. Executable, lib_path
// and var_path are placeholders substituted at invocation time;
// resolve references a sibling component; everything else is passed
// verbatim.
type CommandStep struct {
	Kind StepKind

	// Arg holds the component name for StepResolve and the literal
	// argument for StepVerbatim. Unused otherwise.
	Arg string
}

// Verbatim builds a pass-through step.
func Verbatim(arg string) CommandStep {
	return CommandStep{Kind: StepVerbatim, Arg: arg}
}

// Resolve builds a step referencing another component by name.
func Resolve(component string) CommandStep {
	return CommandStep{Kind: StepResolve, Arg: component}
}

func (s CommandStep) String() string {
	switch s.Kind {
	case StepExecutable:
		return "executable"
	case StepLibPath:
		return "lib_path"
	case StepVarPath:
		return "var_path"
	case StepResolve:
		return fmt.Sprintf("resolve(%s)", s.Arg)
	default:
		return s.Arg
	}
}

// MarshalJSON encodes placeholder steps as bare keyword strings,
// resolve steps as {"resolve": name} objects and verbatim steps as
// plain strings.
func (s CommandStep) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StepExecutable:
		return json.Marshal("executable")
	case StepLibPath:
		return json.Marshal("lib_path")
	case StepVarPath:
		return json.Marshal("var_path")
	case StepResolve:
		return json.Marshal(map[string]string{"resolve": s.Arg})
	case StepVerbatim:
		return json.Marshal(s.Arg)
	default:
		return nil, fmt.Errorf("unknown command step kind %d", s.Kind)
	}
}

// UnmarshalJSON accepts the shapes produced by MarshalJSON. A bare
// string that is not one of the placeholder keywords decodes as a
// verbatim argument.
func (s *CommandStep) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		switch str {
		case "executable":
			s.Kind, s.Arg = StepExecutable, ""
		case "lib_path":
			s.Kind, s.Arg = StepLibPath, ""
		case "var_path":
			s.Kind, s.Arg = StepVarPath, ""
		default:
			s.Kind, s.Arg = StepVerbatim, str
		}
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("command step must be a string or a single-key object: %w", err)
	}
	if arg, ok := obj["resolve"]; ok && len(obj) == 1 {
		s.Kind, s.Arg = StepResolve, arg
		return nil
	}
	if arg, ok := obj["verbatim"]; ok && len(obj) == 1 {
		s.Kind, s.Arg = StepVerbatim, arg
		return nil
	}
	return fmt.Errorf("command step object must have exactly one of the keys %q or %q", "resolve", "verbatim")
}

func stepsEqual(a, b []CommandStep) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
