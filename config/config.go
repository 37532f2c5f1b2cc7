// Package config loads compiler settings from a YAML file.
//
// The file is named beslc.yaml or .beslc.yaml and is searched for in the
// current directory and its parents. Besides GLSL generation settings it
// can declare resources (bindings, push constant members, specialization
// constants) that are appended to every compiled program.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/besl/glsl"
	"github.com/gogpu/besl/syntax"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Version is the GLSL version, e.g. "450" or "320 es".
	Version string `yaml:"version,omitempty"`

	// Stage is the shader stage: vertex, fragment, compute, task, mesh or auto.
	Stage string `yaml:"stage,omitempty"`

	// EntryPoint names the entry function.
	EntryPoint string `yaml:"entry_point,omitempty"`

	// LocalSize is the compute/mesh workgroup size.
	LocalSize []uint32 `yaml:"local_size,omitempty"`

	MaxVertices   *uint32 `yaml:"max_vertices,omitempty"`
	MaxPrimitives *uint32 `yaml:"max_primitives,omitempty"`

	// MatrixLayout is row_major or column_major.
	MatrixLayout string `yaml:"matrix_layout,omitempty"`

	// Minify removes optional whitespace from the output.
	Minify *bool `yaml:"minify,omitempty"`

	PushConstant    []Field          `yaml:"push_constant,omitempty"`
	Bindings        []Binding        `yaml:"bindings,omitempty"`
	Specializations []Specialization `yaml:"specializations,omitempty"`
}

// Field is a named, typed member.
type Field struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Count uint32 `yaml:"count,omitempty"`
}

// Binding declares a descriptor-set resource.
type Binding struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"` // buffer, image or combined_image_sampler
	Set     uint32  `yaml:"set"`
	Binding uint32  `yaml:"binding"`
	Format  string  `yaml:"format,omitempty"`
	Read    bool    `yaml:"read,omitempty"`
	Write   bool    `yaml:"write,omitempty"`
	Count   uint32  `yaml:"count,omitempty"`
	Members []Field `yaml:"members,omitempty"`
}

// Specialization declares a specialization constant.
type Specialization struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"beslc.yaml",
	".beslc.yaml",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.LocalSize) > 3 {
		return fmt.Errorf("local_size has %d dimensions, want at most 3", len(c.LocalSize))
	}
	switch c.MatrixLayout {
	case "", "row_major", "column_major":
	default:
		return fmt.Errorf("invalid matrix_layout %q", c.MatrixLayout)
	}
	for _, b := range c.Bindings {
		switch b.Kind {
		case "buffer", "image", "combined_image_sampler":
		default:
			return fmt.Errorf("binding %s: invalid kind %q", b.Name, b.Kind)
		}
	}
	return nil
}

// ToOptions converts a Config to glsl.Options, using defaults for unset fields.
func (c *Config) ToOptions() (glsl.Options, error) {
	opts := glsl.DefaultOptions()

	if c.Version != "" {
		v, err := glsl.ParseVersion(c.Version)
		if err != nil {
			return opts, err
		}
		opts.LangVersion = v
	}
	if c.Stage != "" {
		s, err := glsl.ParseStage(c.Stage)
		if err != nil {
			return opts, err
		}
		opts.Stage = s
	}
	if c.EntryPoint != "" {
		opts.EntryPoint = c.EntryPoint
	}
	for i, n := range c.LocalSize {
		opts.LocalSize[i] = n
	}
	if c.MaxVertices != nil {
		opts.MaxVertices = *c.MaxVertices
	}
	if c.MaxPrimitives != nil {
		opts.MaxPrimitives = *c.MaxPrimitives
	}
	if c.MatrixLayout == "column_major" {
		opts.MatrixLayout = glsl.ColumnMajor
	}
	if c.Minify != nil && *c.Minify {
		opts.WriterFlags |= glsl.WriterFlagMinify
	}
	return opts, nil
}

// MergeOptions holds command-line overrides. Zero values mean "not set".
type MergeOptions struct {
	Stage      string
	EntryPoint string
	Minify     *bool
}

// Merge applies CLI overrides on top of the file configuration.
func (c *Config) Merge(cli MergeOptions) (glsl.Options, error) {
	opts, err := c.ToOptions()
	if err != nil {
		return opts, err
	}
	if cli.Stage != "" {
		s, err := glsl.ParseStage(cli.Stage)
		if err != nil {
			return opts, err
		}
		opts.Stage = s
	}
	if cli.EntryPoint != "" {
		opts.EntryPoint = cli.EntryPoint
	}
	if cli.Minify != nil {
		if *cli.Minify {
			opts.WriterFlags |= glsl.WriterFlagMinify
		} else {
			opts.WriterFlags &^= glsl.WriterFlagMinify
		}
	}
	return opts, nil
}

// Declarations returns the configured resources as syntax nodes, in the
// order push constant, bindings, specializations.
func (c *Config) Declarations() []syntax.Node {
	var out []syntax.Node
	if len(c.PushConstant) > 0 {
		out = append(out, syntax.NewPushConstant(members(c.PushConstant)...))
	}
	for _, b := range c.Bindings {
		var typ syntax.BindingType
		switch b.Kind {
		case "buffer":
			typ = syntax.NewBuffer(members(b.Members)...)
		case "image":
			typ = syntax.NewImage(b.Format)
		case "combined_image_sampler":
			typ = syntax.NewCombinedImageSampler(b.Format)
		}
		out = append(out, syntax.NewBindingArray(b.Name, typ, b.Set, b.Binding, b.Read, b.Write, b.Count))
	}
	for _, s := range c.Specializations {
		out = append(out, syntax.NewSpecialization(s.Name, s.Type))
	}
	return out
}

func members(fields []Field) []*syntax.Member {
	out := make([]*syntax.Member, len(fields))
	for i, f := range fields {
		out[i] = syntax.NewArrayMember(f.Name, f.Type, f.Count)
	}
	return out
}
