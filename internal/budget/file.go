// Public domain.

package budget

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays a YAML configuration file on base.
//
// A preset named in the file is applied first, so thresholds given
// explicitly in the same file win over the preset's.
//
//	preset: fine
//	t_max: 20
//	scale: [206264.806, 206264.806, 384399]
//	body_weight:
//	  MARS: 0.52
func LoadFile(fn string, base Config) (Config, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return base, err
	}
	return Load(b, base)
}

// Load is LoadFile on YAML text.
func Load(b []byte, base Config) (Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(b, &head); err != nil {
		return base, fmt.Errorf("budget: %w", err)
	}
	c := base.clone()
	if head.Preset != "" {
		var err error
		if c, err = c.WithPreset(head.Preset); err != nil {
			return base, err
		}
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return base, fmt.Errorf("budget: %w", err)
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

// clone copies the map and slices so decoding into the copy leaves the
// original alone.
func (c Config) clone() Config {
	c.Scale = append([]float64(nil), c.Scale...)
	c.Skip = append([]string(nil), c.Skip...)
	if c.BodyWeight != nil {
		w := make(map[string]float64, len(c.BodyWeight))
		for b, v := range c.BodyWeight {
			w[b] = v
		}
		c.BodyWeight = w
	}
	return c
}
