package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// KindChecker reports whether a step kind exists.
type KindChecker interface {
	Has(kind string) bool
}

// Validate checks the configuration for structural issues. It returns a human readable
// description of every issue found; an empty list means the configuration is valid. Step kinds
// are checked against kinds unless it is nil.
//
// Structural checks include:
//   - Pipeline and task names are non-empty, unique and do not start with the pipeline task prefix
//   - Pipelines match at least one file pattern
//   - Steps have a name and a kind, and set at most one of prepend, before and after
//   - Before and after refer to a step declared earlier in the same pipeline
//   - Joins target another declared pipeline at exactly one point
//   - Phases list steps of their pipeline
func (c *Config) Validate(kinds KindChecker) []string {
	var issues []string

	names := make(map[string]string, len(c.Pipelines)+len(c.Tasks))

	declare := func(prefix, name string) {
		switch {
		case name == "":
			issues = append(issues, prefix+": name is required")
		case strings.HasPrefix(name, model.TaskNamePrefix):
			issues = append(issues, fmt.Sprintf("%s: name must not start with %q", prefix, model.TaskNamePrefix))
		default:
			if first, ok := names[name]; ok {
				issues = append(issues, fmt.Sprintf("%s: duplicate name (first used by %s)", prefix, first))
			} else {
				names[name] = prefix
			}
		}
	}

	for _, pipe := range c.Pipelines {
		declare(fmt.Sprintf("pipelines[%q]", pipe.Name), pipe.Name)
	}

	for _, alias := range c.Tasks {
		prefix := fmt.Sprintf("tasks[%q]", alias.Name)
		declare(prefix, alias.Name)

		for i, dep := range alias.Dependencies {
			if dep == "" {
				issues = append(issues, fmt.Sprintf("%s: dependency %d is empty", prefix, i))
			}
		}
	}

	for _, pipe := range c.Pipelines {
		issues = append(issues, c.validatePipeline(pipe, kinds)...)
	}

	return issues
}

func (c *Config) validatePipeline(pipe Pipeline, kinds KindChecker) []string {
	var issues []string

	prefix := fmt.Sprintf("pipelines[%q]", pipe.Name)

	if len(pipe.Files) == 0 {
		issues = append(issues, prefix+": files is required")
	}

	for i, pattern := range pipe.Files {
		if strings.TrimPrefix(pattern, "!") == "" {
			issues = append(issues, fmt.Sprintf("%s: files[%d] is empty", prefix, i))
		}
	}

	declared := make(map[string]struct{}, len(pipe.Steps))

	for index, step := range pipe.Steps {
		issues = append(issues, validateStep(step, fmt.Sprintf("%s steps[%d]", prefix, index), declared, kinds)...)

		if step.Name != "" {
			declared[step.Name] = struct{}{}
		}
	}

	if pipe.Join != nil {
		switch {
		case pipe.Join.Target == "":
			issues = append(issues, prefix+": join target is required")
		case pipe.Join.Target == pipe.Name:
			issues = append(issues, prefix+": join target must be another pipeline")
		default:
			if _, ok := c.Pipeline(pipe.Join.Target); !ok {
				issues = append(issues, fmt.Sprintf("%s: join target %q is not declared", prefix, pipe.Join.Target))
			}
		}

		if _, err := pipe.Join.Point(); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}
	}

	for _, phase := range slices.Sorted(maps.Keys(pipe.Phases)) {
		for _, name := range pipe.Phases[phase] {
			if _, ok := declared[name]; !ok {
				issues = append(issues, fmt.Sprintf("%s phases[%q]: step %q is not declared", prefix, phase, name))
			}
		}
	}

	return issues
}

func validateStep(step Step, prefix string, declared map[string]struct{}, kinds KindChecker) []string {
	var issues []string

	if step.Name == "" {
		issues = append(issues, prefix+": name is required")
	} else {
		prefix = fmt.Sprintf("%s %q", prefix, step.Name)
	}

	switch {
	case step.Use == "":
		issues = append(issues, prefix+": use is required")
	case kinds != nil && !kinds.Has(step.Use):
		issues = append(issues, fmt.Sprintf("%s: unknown step kind %q", prefix, step.Use))
	}

	placements := 0

	if step.Prepend {
		placements++
	}

	for _, ref := range []string{step.Before, step.After} {
		if ref == "" {
			continue
		}

		placements++

		switch _, ok := declared[ref]; {
		case ref == step.Name:
			issues = append(issues, fmt.Sprintf("%s: step cannot be placed relative to itself", prefix))
		case !ok:
			issues = append(issues, fmt.Sprintf("%s: step %q must be declared earlier", prefix, ref))
		}
	}

	if placements > 1 {
		issues = append(issues, prefix+": prepend, before and after are mutually exclusive (set at most one)")
	}

	if step.Concurrency < 0 {
		issues = append(issues, prefix+": concurrency must not be negative")
	}

	if step.BufferSize < 0 {
		issues = append(issues, prefix+": buffer_size must not be negative")
	}

	return issues
}
