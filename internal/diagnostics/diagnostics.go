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

// Package diagnostics serves a live view of the running process's own
// timing over HTTP, for whoever is working on the emulator rather than
// for anything the emulated machine itself does. It is never on the hot
// cycle loop's critical path: a host only starts it explicitly, and the
// worst it can do to emulation is miss a sample.
package diagnostics

import (
	"sync"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Server wraps a statsview Manager with start-once/stop-once semantics
// and a handful of named timers a host can feed per-phase durations
// into (CPU, VIC, CIA, drive, pacer-drift), mirroring the per-chip
// breakdown the view is meant to show.
type Server struct {
	mu      sync.Mutex
	mgr     *statsview.Manager
	started bool

	samples map[string]time.Duration
}

// New builds a Server listening on addr (e.g. "localhost:18066") once
// Start is called. An empty addr falls back to statsview's own default.
func New(addr string) *Server {
	var opts []viewer.Option
	if addr != "" {
		opts = append(opts, viewer.WithAddr(addr))
	}
	return &Server{
		mgr:     statsview.New(opts...),
		samples: make(map[string]time.Duration),
	}
}

// Start launches the HTTP server in the background. Calling Start twice
// is a no-op; the view is either already up or already torn down.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go func() {
		_ = s.mgr.Start()
	}()
}

// Stop shuts the HTTP server down, releasing its listener.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	_ = s.mgr.Stop()
}

// RecordPhase records how long one call to a named phase (e.g. "vic",
// "cia1", "drive") took, for a host that wants to plot per-chip cost
// alongside statsview's own CPU/memory/goroutine graphs. Phase timing
// plugins are not part of statsview's default dashboard, so this is
// kept as plain bookkeeping a host's own page can poll rather than
// wired into the view itself - there's no supported hook in v0.3.4 for
// adding a custom chart without forking the package.
func (s *Server) RecordPhase(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[name] = d
}

// PhaseDurations returns a snapshot of the most recent RecordPhase call
// for every named phase.
func (s *Server) PhaseDurations() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.samples))
	for k, v := range s.samples {
		out[k] = v
	}
	return out
}
