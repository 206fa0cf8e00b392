package config

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type expander struct {
	variables map[string]string
	lookupEnv func(string) (string, bool)
	missing   map[string]struct{}
}

func (e *expander) mapping(name string) string {
	if name == "$" {
		return "$"
	}

	if value, ok := e.variables[name]; ok {
		return value
	}

	if value, ok := e.lookupEnv(name); ok {
		return value
	}

	e.missing[name] = struct{}{}

	return ""
}

func (e *expander) expand(s string) string {
	return os.Expand(s, e.mapping)
}

func (e *expander) expandAll(values []string) {
	for i, value := range values {
		values[i] = e.expand(value)
	}
}

func (e *expander) expandValue(value any) any {
	switch v := value.(type) {
	case string:
		return e.expand(v)
	case []any:
		for i := range v {
			v[i] = e.expandValue(v[i])
		}

		return v
	case map[string]any:
		for key := range v {
			v[key] = e.expandValue(v[key])
		}

		return v
	default:
		return value
	}
}

// expand substitutes ${NAME} references in the file patterns, directories and step options of
// every pipeline. "$$" stands for a literal "$".
func (c *Config) expand(lookupEnv func(string) (string, bool)) error {
	e := &expander{
		variables: c.Variables,
		lookupEnv: lookupEnv,
		missing:   make(map[string]struct{}),
	}

	for i := range c.Pipelines {
		pipe := &c.Pipelines[i]

		e.expandAll(pipe.Files)
		pipe.Base = e.expand(pipe.Base)
		pipe.Dest = e.expand(pipe.Dest)

		for j := range pipe.Steps {
			for key, value := range pipe.Steps[j].With {
				pipe.Steps[j].With[key] = e.expandValue(value)
			}
		}
	}

	if len(e.missing) == 0 {
		return nil
	}

	names := make([]string, 0, len(e.missing))
	for name := range e.missing {
		names = append(names, name)
	}

	sort.Strings(names)

	return errors.Wrap(ErrUndefinedVariable, strings.Join(names, ", "))
}
