package config

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"strings"

	"github.com/trebuchet-org/chainz/internal/domain"
)

// variableNamePattern matches the NAME part of a ${NAME} placeholder
var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Environment returns a snapshot of the process environment
type Environment func() map[string]string

// OSEnvironment snapshots os.Environ
func OSEnvironment() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// StaticEnvironment returns an Environment that always yields env
func StaticEnvironment(env map[string]string) Environment {
	snapshot := maps.Clone(env)
	return func() map[string]string { return snapshot }
}

// Resolver expands ${NAME} placeholders against the process environment and
// the persisted variables, in that order of precedence. Expansion is a single
// pass: substituted values are never rescanned.
type Resolver struct {
	variables   map[string]string
	environment Environment
}

// NewResolver creates a resolver over the persisted variables and the OS environment
func NewResolver(variables map[string]string) *Resolver {
	return &Resolver{
		variables:   maps.Clone(variables),
		environment: OSEnvironment,
	}
}

// WithEnvironment returns a copy of the resolver reading env instead of the OS
func (r *Resolver) WithEnvironment(env Environment) *Resolver {
	return &Resolver{variables: r.variables, environment: env}
}

// Resolve expands every placeholder in input
func (r *Resolver) Resolve(input string) (string, error) {
	env := r.environment()

	var b strings.Builder
	err := scanPlaceholders(input, func(literal string) {
		b.WriteString(literal)
	}, func(name string) error {
		value, ok := env[name]
		if !ok {
			value, ok = r.variables[name]
		}
		if !ok {
			return &domain.UnresolvedVariableError{Name: name}
		}
		b.WriteString(value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Lookup returns the effective value of a single variable and where it came from
func (r *Resolver) Lookup(name string) (value string, source string, ok bool) {
	if value, ok := r.environment()[name]; ok {
		return value, "env", true
	}
	if value, ok := r.variables[name]; ok {
		return value, "config", true
	}
	return "", "", false
}

// Placeholders lists the variable names referenced by input, in order of appearance
func Placeholders(input string) ([]string, error) {
	var names []string
	err := scanPlaceholders(input, func(string) {}, func(name string) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

// ValidateVariableName reports whether name can be used inside ${...}
func ValidateVariableName(name string) error {
	if !variableNamePattern.MatchString(name) {
		return &domain.FormatError{Reason: fmt.Sprintf("invalid variable name %q: names must match [A-Za-z_][A-Za-z0-9_]*", name)}
	}
	return nil
}

// scanPlaceholders walks input, handing literal runs to onLiteral and
// placeholder names to onName
func scanPlaceholders(input string, onLiteral func(string), onName func(string) error) error {
	rest := input
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			onLiteral(rest)
			return nil
		}
		onLiteral(rest[:start])
		position := len(input) - len(rest) + start + 1

		body := rest[start+2:]
		end := strings.IndexByte(body, '}')
		if end < 0 {
			return &domain.FormatError{Position: position, Reason: "unterminated placeholder"}
		}

		name := body[:end]
		if name == "" {
			return &domain.FormatError{Position: position, Reason: "empty placeholder name"}
		}
		if !variableNamePattern.MatchString(name) {
			return &domain.FormatError{Position: position, Reason: "invalid variable name"}
		}
		if err := onName(name); err != nil {
			return err
		}
		rest = body[end+1:]
	}
}

// GenerateVariableName builds a conventional variable name for a chain setting.
// Examples: sepolia, RPC_URL -> SEPOLIA_RPC_URL; celo-sepolia, API_KEY -> CELO_SEPOLIA_API_KEY
func GenerateVariableName(chainName, suffix string) string {
	name := strings.ToUpper(chainName)
	name = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name)
	return name + "_" + suffix
}
