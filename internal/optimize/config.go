package optimize

import (
	"fmt"
	"strings"
)

// Mode selects how validated snapshots are forwarded.
type Mode uint8

const (
	ModeSafe Mode = iota
	ModeNormal
	ModeFast
	ModeAccurate
)

var modeNames = [...]string{"safe", "normal", "fast", "accurate"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown processing mode %q", s)
}

// Feature is a bit set of acceleration paths.
type Feature uint32

const (
	FeatureSIMD Feature = 1 << iota
	FeatureGPU
	FeatureDMA
	FeatureCachePrefetch
	FeatureLowLatency

	AllFeatures = FeatureSIMD | FeatureGPU | FeatureDMA | FeatureCachePrefetch | FeatureLowLatency
)

const (
	MinBufferMs     = 1
	MaxBufferMs     = 32
	DefaultBufferMs = 4
)

// CPU frequency ladder. The target only moves in FreqStep increments and
// never leaves [CPUFreqMin, CPUFreqTurbo].
const (
	CPUFreqMin   uint32 = 600_000_000
	CPUFreqMax   uint32 = 1_200_000_000
	CPUFreqTurbo uint32 = 1_400_000_000
	FreqStep     uint32 = 100_000_000
)

// Config is the processing configuration. It is mutated by the tuner and
// by explicit mode changes and read on every frame.
type Config struct {
	Mode           Mode
	Features       Feature
	InputBufferMs  uint32
	OutputBufferMs uint32
	CPUFreq        uint32
}

func DefaultConfig() Config {
	return Config{
		Mode:           ModeNormal,
		Features:       FeatureSIMD | FeatureDMA | FeatureCachePrefetch,
		InputBufferMs:  DefaultBufferMs,
		OutputBufferMs: DefaultBufferMs,
		CPUFreq:        CPUFreqMax,
	}
}

// applyPreset sets the buffer depths, CPU target and feature mask that
// belong to mode.
func (c *Config) applyPreset(mode Mode) {
	c.Mode = mode
	switch mode {
	case ModeSafe:
		c.InputBufferMs = MaxBufferMs
		c.OutputBufferMs = MaxBufferMs
		c.CPUFreq = CPUFreqMin
		c.Features &^= FeatureGPU | FeatureDMA
	case ModeFast:
		c.InputBufferMs = MinBufferMs
		c.OutputBufferMs = MinBufferMs
		c.CPUFreq = CPUFreqTurbo
	case ModeAccurate:
		c.InputBufferMs = MaxBufferMs
		c.OutputBufferMs = DefaultBufferMs
		c.CPUFreq = CPUFreqMax
	default:
		c.InputBufferMs = DefaultBufferMs
		c.OutputBufferMs = DefaultBufferMs
		c.CPUFreq = CPUFreqMax
	}
}

func (c *Config) stepFreqDown() bool {
	if c.CPUFreq <= CPUFreqMin {
		return false
	}
	c.CPUFreq -= FreqStep
	if c.CPUFreq < CPUFreqMin {
		c.CPUFreq = CPUFreqMin
	}
	return true
}

func (c *Config) stepFreqUp() bool {
	if c.CPUFreq >= CPUFreqTurbo {
		return false
	}
	c.CPUFreq += FreqStep
	if c.CPUFreq > CPUFreqTurbo {
		c.CPUFreq = CPUFreqTurbo
	}
	return true
}

func (c *Config) growInputBuffer() {
	if c.InputBufferMs < MaxBufferMs {
		c.InputBufferMs++
	}
}

func (c *Config) shrinkInputBuffer() {
	if c.InputBufferMs > MinBufferMs {
		c.InputBufferMs--
	}
}
