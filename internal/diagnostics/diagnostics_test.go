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

package diagnostics

import (
	"testing"
	"time"
)

// This deliberately never calls Start: the package's own HTTP server is
// out of scope for an automated test, only the phase bookkeeping is.
func TestServer_recordsAndSnapshotsPhaseDurations(t *testing.T) {
	s := New("")

	s.RecordPhase("vic", 12*time.Microsecond)
	s.RecordPhase("cia1", 3*time.Microsecond)
	s.RecordPhase("vic", 9*time.Microsecond) // overwrites the earlier sample

	got := s.PhaseDurations()
	if got["vic"] != 9*time.Microsecond {
		t.Fatalf("vic phase = %v, want 9us (most recent sample)", got["vic"])
	}
	if got["cia1"] != 3*time.Microsecond {
		t.Fatalf("cia1 phase = %v, want 3us", got["cia1"])
	}

	// mutating the returned map must not affect the server's own state
	got["vic"] = 0
	if again := s.PhaseDurations()["vic"]; again != 9*time.Microsecond {
		t.Fatalf("PhaseDurations returned a live reference, not a copy")
	}
}
