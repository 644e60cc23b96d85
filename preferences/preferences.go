// This file is part of c64core.
//
// c64core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// c64core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with c64core.  If not, see <https://www.gnu.org/licenses/>.

// Package preferences holds the small set of configuration values that
// change how the emulation behaves but are not part of the machine's
// architectural state — the video standard to emulate, whether a reset
// fills RAM with pseudo-random noise, and whether the
// real-time pacer is disabled. These are deliberately kept separate from
// hardware/memory.Memory and friends: they are read at reset/attach time,
// not polled every cycle.
package preferences

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Value is a named, persistable preference of type T.
type Value[T any] struct {
	name    string
	current T
	deflt   T
}

func newValue[T any](name string, deflt T) *Value[T] {
	return &Value[T]{name: name, current: deflt, deflt: deflt}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.current
}

// Set changes the current value.
func (v *Value[T]) Set(val T) {
	v.current = val
}

// SetDefault resets the value to its default.
func (v *Value[T]) SetDefault() {
	v.current = v.deflt
}

// Preferences is the full set of configurable emulator behaviour.
type Preferences struct {
	// Model selects the video standard: "PAL" or "NTSC". hardware.C64
	// changes it through SetModel, which must be called from the
	// machine's owning goroutine.
	Model *Value[string]

	// RandomState controls whether Reset fills RAM with pseudo-random
	// noise (true, matching real hardware). When false, Reset leaves RAM
	// as it is, so a new machine's RAM stays zeroed (useful for
	// reproducible regression tests). CPU registers are not seeded
	// either way.
	RandomState *Value[bool]

	// Warp disables real-time pacing for the current session.
	Warp *Value[bool]

	// AlwaysWarp makes the Warp setting sticky across resets/loads.
	AlwaysWarp *Value[bool]

	// DriveSounds enables/disables the (host-side) rendering of the floppy
	// drive's mechanical noises; the core only exposes the head-movement
	// and motor messages that a host would use to drive this.
	DriveSounds *Value[bool]
}

// NewPreferences is the preferred method of initialisation.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{
		Model:       newValue("model", "PAL"),
		RandomState: newValue("random.state", true),
		Warp:        newValue("warp", false),
		AlwaysWarp:  newValue("warp.always", false),
		DriveSounds: newValue("drive.sounds", true),
	}
	return p, nil
}

// SetDefaults restores every preference to its default value.
func (p *Preferences) SetDefaults() {
	p.Model.SetDefault()
	p.RandomState.SetDefault()
	p.Warp.SetDefault()
	p.AlwaysWarp.SetDefault()
	p.DriveSounds.SetDefault()
}

// entries returns every persistable value as name/getter/setter triples, in
// a fixed order, so Save/Load are deterministic.
func (p *Preferences) entries() []struct {
	name string
	get  func() string
	set  func(string) error
} {
	return []struct {
		name string
		get  func() string
		set  func(string) error
	}{
		{p.Model.name, func() string { return p.Model.Get() }, func(s string) error { p.Model.Set(s); return nil }},
		{p.RandomState.name, func() string { return strconv.FormatBool(p.RandomState.Get()) }, func(s string) error {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			p.RandomState.Set(b)
			return nil
		}},
		{p.Warp.name, func() string { return strconv.FormatBool(p.Warp.Get()) }, func(s string) error {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			p.Warp.Set(b)
			return nil
		}},
		{p.AlwaysWarp.name, func() string { return strconv.FormatBool(p.AlwaysWarp.Get()) }, func(s string) error {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			p.AlwaysWarp.Set(b)
			return nil
		}},
		{p.DriveSounds.name, func() string { return strconv.FormatBool(p.DriveSounds.Get()) }, func(s string) error {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			p.DriveSounds.Set(b)
			return nil
		}},
	}
}

// Save writes every preference to path as newline-separated "name=value"
// pairs.
func (p *Preferences) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range p.entries() {
		if _, err := fmt.Fprintf(w, "%s=%s\n", e.name, e.get()); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
	}
	return w.Flush()
}

// Load reads preferences previously written by Save. Unrecognised keys are
// ignored; missing keys keep their current value.
func (p *Preferences) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	defer f.Close()

	setters := make(map[string]func(string) error)
	for _, e := range p.entries() {
		setters[e.name] = e.set
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if set, ok := setters[k]; ok {
			if err := set(v); err != nil {
				return fmt.Errorf("preferences: key %q: %w", k, err)
			}
		}
	}
	return sc.Err()
}
