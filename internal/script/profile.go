package script

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/padrelay/device/dualsense"
)

// Profile is a set of scripts and combos loaded from a YAML or TOML file.
//
//	scripts:
//	  - name: combos
//	    kind: combo
//	combos:
//	  - name: quick-swap
//	    steps:
//	      - buttons: L1
//	        maxGap: 1s
//	      - buttons: L1+R1
//	        maxGap: 100ms
//	    result:
//	      buttons: Triangle
type Profile struct {
	Scripts []ScriptSpec `yaml:"scripts" toml:"scripts"`
	Combos  []ComboSpec  `yaml:"combos" toml:"combos"`
}

type ScriptSpec struct {
	Name     string `yaml:"name" toml:"name"`
	Kind     string `yaml:"kind" toml:"kind"`
	Priority int    `yaml:"priority" toml:"priority"`
}

type ComboSpec struct {
	Name   string     `yaml:"name" toml:"name"`
	Steps  []StepSpec `yaml:"steps" toml:"steps"`
	Result ResultSpec `yaml:"result" toml:"result"`
}

type StepSpec struct {
	Buttons string `yaml:"buttons" toml:"buttons"`
	MaxGap  string `yaml:"maxGap" toml:"maxGap"`
}

// ResultSpec is the state substituted when a combo matches. Sticks holds
// LX, LY, RX, RY; missing axes are centered.
type ResultSpec struct {
	Buttons string `yaml:"buttons" toml:"buttons"`
	Sticks  []int  `yaml:"sticks" toml:"sticks"`
	L2      int    `yaml:"l2" toml:"l2"`
	R2      int    `yaml:"r2" toml:"r2"`
}

// LoadProfile reads a profile, picking the format from the file extension.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := ParseProfile(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes data as "yaml", "yml" or "toml".
func ParseProfile(data []byte, format string) (*Profile, error) {
	var p Profile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse yaml profile: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse toml profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
	return &p, nil
}

// Apply registers the profile's scripts and combos with e. When the
// profile defines combos but no combo script, one is added so the combos
// are evaluated.
func (p *Profile) Apply(e *Engine) error {
	hasCombo := false
	for _, s := range p.Scripts {
		kind, err := ParseKind(s.Kind)
		if err != nil {
			return fmt.Errorf("script %q: %w", s.Name, err)
		}
		if s.Priority < 0 || s.Priority > math.MaxUint8 {
			return fmt.Errorf("script %q: priority %d out of range", s.Name, s.Priority)
		}
		if err := e.AddScript(kind, s.Name, uint8(s.Priority)); err != nil {
			return fmt.Errorf("script %q: %w", s.Name, err)
		}
		hasCombo = hasCombo || kind == KindCombo
	}

	for _, c := range p.Combos {
		buttons, timings, result, err := c.compile()
		if err != nil {
			return fmt.Errorf("combo %q: %w", c.Name, err)
		}
		if err := e.AddCombo(buttons, timings, result); err != nil {
			return fmt.Errorf("combo %q: %w", c.Name, err)
		}
	}

	if len(p.Combos) > 0 && !hasCombo {
		return e.AddScript(KindCombo, "combos", 0)
	}
	return nil
}

func (c ComboSpec) compile() ([]uint16, []uint32, dualsense.ControllerState, error) {
	var result dualsense.ControllerState
	buttons := make([]uint16, 0, len(c.Steps))
	timings := make([]uint32, 0, len(c.Steps))
	for i, s := range c.Steps {
		m, err := dualsense.ParseButtonMask(s.Buttons)
		if err != nil {
			return nil, nil, result, fmt.Errorf("step %d: %w", i, err)
		}
		gap, err := parseGap(s.MaxGap)
		if err != nil {
			return nil, nil, result, fmt.Errorf("step %d: %w", i, err)
		}
		buttons = append(buttons, m)
		timings = append(timings, gap)
	}

	m, err := dualsense.ParseButtonMask(c.Result.Buttons)
	if err != nil {
		return nil, nil, result, fmt.Errorf("result: %w", err)
	}
	result.Buttons = m

	if len(c.Result.Sticks) > 4 {
		return nil, nil, result, errors.New("result: at most four stick axes")
	}
	axes := [4]*uint8{&result.LX, &result.LY, &result.RX, &result.RY}
	for i, a := range axes {
		v := 128
		if i < len(c.Result.Sticks) {
			v = c.Result.Sticks[i]
		}
		if v < 0 || v > math.MaxUint8 {
			return nil, nil, result, fmt.Errorf("result: stick axis %d out of range", v)
		}
		*a = uint8(v)
	}
	for _, t := range []struct {
		v   int
		dst *uint8
	}{{c.Result.L2, &result.L2}, {c.Result.R2, &result.R2}} {
		if t.v < 0 || t.v > math.MaxUint8 {
			return nil, nil, result, fmt.Errorf("result: trigger %d out of range", t.v)
		}
		*t.dst = uint8(t.v)
	}
	return buttons, timings, result, nil
}

func parseGap(s string) (uint32, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid maxGap: %w", err)
	}
	us := d.Microseconds()
	if us < 0 || us > math.MaxUint32 {
		return 0, fmt.Errorf("maxGap %s out of range", s)
	}
	return uint32(us), nil
}
