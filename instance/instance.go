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

// Package instance defines those parts of the emulation that may differ
// between separate instantiations of the C64 type but are not the C64
// itself — preferences and the per-instance random number source. Keeping
// these out of the C64 type proper makes it practical to run more than one
// machine in the same process (for example, a reference machine and a
// rewind-candidate machine, compared cycle by cycle).
package instance

import (
	"github.com/go64/c64core/preferences"
	"github.com/go64/c64core/random"
)

// Instance bundles the parts of the emulation that vary per-instance.
type Instance struct {
	Prefs  *preferences.Preferences
	Random *random.Random
}

// NewInstance is the preferred method of initialisation for Instance.
func NewInstance(coords random.Coords) (*Instance, error) {
	ins := &Instance{
		Random: random.NewRandom(coords),
	}

	var err error
	ins.Prefs, err = preferences.NewPreferences()
	if err != nil {
		return nil, err
	}

	return ins, nil
}

// Normalise puts the instance into a known default state, used by
// regression tests so that every run starts identically.
func (ins *Instance) Normalise() {
	ins.Random.ZeroSeed = true
	ins.Prefs.SetDefaults()
}
