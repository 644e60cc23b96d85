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

package main

import (
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// terminal toggles stdin between canonical mode (the normal line-buffered
// mode typed commands are read in) and cbreak mode, for the "run"
// command's duration - cbreak keeps ISIG active so Ctrl-C still reaches
// the process as SIGINT instead of being queued as ordinary input, giving
// an immediate interrupt without a second goroutine racing the command
// reader for bytes off the same stdin. This is a stripped-down relative
// of a colour terminal's raw-mode handling: no cursor geometry, no
// SIGWINCH tracking, since a line-oriented debugger prompt needs neither.
type terminal struct {
	input *os.File

	canAttr    syscall.Termios
	cbreakAttr syscall.Termios
}

func newTerminal(input *os.File) (*terminal, error) {
	t := &terminal{input: input}
	if err := termios.Tcgetattr(t.input.Fd(), &t.canAttr); err != nil {
		return nil, err
	}
	t.cbreakAttr = t.canAttr
	termios.Cfmakecbreak(&t.cbreakAttr)
	return t, nil
}

func (t *terminal) cbreakMode() {
	termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.cbreakAttr)
}

func (t *terminal) canonicalMode() {
	termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.canAttr)
}
