// Package blockspec reads the YAML block description that binds the
// channel parameters of a top function to named ports when generating a
// proc.
package blockspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Channel directions and kinds as they appear in the YAML source.
const (
	DirIn  = "in"
	DirOut = "out"

	KindFIFO   = "fifo"
	KindDirect = "direct"
)

// Channel binds one channel parameter of the top function to a port.
type Channel struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
	Kind      string `yaml:"kind,omitempty"` // fifo when empty
}

func (c *Channel) IsInput() bool  { return c.Direction == DirIn }
func (c *Channel) IsDirect() bool { return c.Kind == KindDirect }

// Spec is one block description.
type Spec struct {
	Name     string     `yaml:"name"`
	Channels []*Channel `yaml:"channels"`
}

// Find returns the binding for a channel parameter name, or nil.
func (s *Spec) Find(name string) *Channel {
	for _, c := range s.Channels {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Parse decodes and validates a block spec.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing block spec: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a block spec from a file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading block spec: %w", err)
	}
	return Parse(data)
}

func (s *Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("block spec needs a name")
	}
	seen := make(map[string]bool)
	for _, c := range s.Channels {
		if c.Name == "" {
			return fmt.Errorf("block spec channel needs a name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate channel %s in block spec", c.Name)
		}
		seen[c.Name] = true
		switch c.Direction {
		case DirIn, DirOut:
		default:
			return fmt.Errorf("channel %s: direction must be %q or %q", c.Name, DirIn, DirOut)
		}
		switch c.Kind {
		case "", KindFIFO:
		case KindDirect:
			if c.Direction != DirIn {
				return fmt.Errorf("channel %s: direct channels must be inputs", c.Name)
			}
		default:
			return fmt.Errorf("channel %s: kind must be %q or %q", c.Name, KindFIFO, KindDirect)
		}
	}
	return nil
}
