package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// Config is a whole configuration document.
type Config struct {
	// Phase is handed to every pipeline run. The command line may override it.
	Phase string
	// Variables are the values of ${NAME} references. Names missing here are looked up in the
	// environment.
	Variables map[string]string
	Tasks     []Alias
	Pipelines []Pipeline
}

// Alias is a task grouping other tasks. It runs nothing itself.
type Alias struct {
	Name         string
	Dependencies []string
}

// Pipeline describes a pipeline over the files matching Files.
type Pipeline struct {
	Name string `yaml:"-"`
	// Files are glob patterns relative to Base. Patterns starting with "!" exclude files.
	Files StringList `yaml:"files"`
	// Base is the directory files are read from. Defaults to the current directory.
	Base string `yaml:"base"`
	// Dest is the directory files are written to. No files are written when empty.
	Dest    string              `yaml:"dest"`
	Depends StringList          `yaml:"depends"`
	Join    *model.Join         `yaml:"join"`
	Phases  map[string][]string `yaml:"phases"`
	Steps   []Step              `yaml:"steps"`
}

// Step is a step of a pipeline. Use names the step kind. Steps are appended unless one of
// Prepend, Before and After is set.
type Step struct {
	Name        string         `yaml:"name"`
	Use         string         `yaml:"use"`
	Prepend     bool           `yaml:"prepend"`
	Before      string         `yaml:"before"`
	After       string         `yaml:"after"`
	Concurrency int            `yaml:"concurrency"`
	BufferSize  int            `yaml:"buffer_size"`
	With        map[string]any `yaml:"with"`
}

// Point returns where the step is inserted.
func (s Step) Point() model.InsertionPoint {
	switch {
	case s.Prepend:
		return model.Prepend()
	case s.Before != "":
		return model.Before(s.Before)
	case s.After != "":
		return model.After(s.After)
	default:
		return model.Append()
	}
}

// StringList is a list of strings written either as a sequence or as a single scalar.
type StringList []string

func (sl *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}

		*sl = StringList{value}

		return nil
	}

	var values []string
	if err := node.Decode(&values); err != nil {
		return err
	}

	*sl = values

	return nil
}

type document struct {
	Phase     string            `yaml:"phase"`
	Variables map[string]string `yaml:"variables"`
	Tasks     yaml.Node         `yaml:"tasks"`
	Pipelines yaml.Node         `yaml:"pipelines"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var doc document
	if err := node.Decode(&doc); err != nil {
		return err
	}

	c.Phase = doc.Phase
	c.Variables = doc.Variables
	c.Tasks = nil
	c.Pipelines = nil

	err := eachEntry(&doc.Tasks, func(name string, value *yaml.Node) error {
		var deps StringList
		if err := value.Decode(&deps); err != nil {
			return errors.Wrapf(err, "task %s", name)
		}

		c.Tasks = append(c.Tasks, Alias{Name: name, Dependencies: deps})

		return nil
	})
	if err != nil {
		return err
	}

	return eachEntry(&doc.Pipelines, func(name string, value *yaml.Node) error {
		var pipe Pipeline
		if err := value.Decode(&pipe); err != nil {
			return errors.Wrapf(err, "pipeline %s", name)
		}

		pipe.Name = name
		c.Pipelines = append(c.Pipelines, pipe)

		return nil
	})
}

// eachEntry calls fn for every key of a mapping node, in document order.
func eachEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}

		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}

// Pipeline returns the pipeline called name.
func (c *Config) Pipeline(name string) (*Pipeline, bool) {
	for i := range c.Pipelines {
		if c.Pipelines[i].Name == name {
			return &c.Pipelines[i], true
		}
	}

	return nil, false
}
