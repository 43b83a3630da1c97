// Package manifest handles vmlimits.toml execution-limit configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/ledgervm/vm"
)

// FileName is the configuration file loaded from a host's config directory.
const FileName = "vmlimits.toml"

// Manifest represents a vmlimits.toml configuration. Zero-valued fields fall
// back to the engine defaults at Limits time.
type Manifest struct {
	Engine Engine `toml:"engine"`

	// Dir is the directory containing the vmlimits.toml file (set at load time).
	Dir string `toml:"-"`
}

// Engine carries the execution limits of one engine instance.
type Engine struct {
	MaxInvocationStackSize int `toml:"max-invocation-stack-size"`
	MaxTryNestingDepth     int `toml:"max-try-nesting-depth"`
	MaxStackItemCount      int `toml:"max-stack-item-count"`
	MaxItemSize            int `toml:"max-item-size"`
	MaxIntegerSize         int `toml:"max-integer-size"`
	MaxShift               int `toml:"max-shift"`
	MaxPowExponent         int `toml:"max-pow-exponent"`
}

// Load parses a vmlimits.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a vmlimits.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Limits merges the manifest over the engine defaults and validates the
// result.
func (m *Manifest) Limits() (vm.Limits, error) {
	l := vm.DefaultLimits()
	if m.Engine.MaxInvocationStackSize != 0 {
		l.MaxInvocationStackSize = m.Engine.MaxInvocationStackSize
	}
	if m.Engine.MaxTryNestingDepth != 0 {
		l.MaxTryNestingDepth = m.Engine.MaxTryNestingDepth
	}
	if m.Engine.MaxStackItemCount != 0 {
		l.MaxStackItemCount = m.Engine.MaxStackItemCount
	}
	if m.Engine.MaxItemSize != 0 {
		l.MaxItemSize = m.Engine.MaxItemSize
	}
	if m.Engine.MaxIntegerSize != 0 {
		l.MaxIntegerSize = m.Engine.MaxIntegerSize
	}
	if m.Engine.MaxShift != 0 {
		l.MaxShift = m.Engine.MaxShift
	}
	if m.Engine.MaxPowExponent != 0 {
		l.MaxPowExponent = m.Engine.MaxPowExponent
	}
	if err := l.Validate(); err != nil {
		return vm.Limits{}, err
	}
	return l, nil
}
