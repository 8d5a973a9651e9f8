// Package output writes prepenv's user-facing progress lines. Every
// step announcement goes to stderr with a fixed prefix so CI logs stay
// greppable; styling is dropped when stderr is not a terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/prepenv/pkg/output/styles"
)

// Prefix marks every progress line
const Prefix = "[prepare-test-environment]"

// Announcer prints one progress line per step
type Announcer struct {
	w     io.Writer
	color bool
}

// NewAnnouncer creates an Announcer writing to w. Styling is enabled
// only when w is the process's stderr attached to a terminal.
func NewAnnouncer(w io.Writer) *Announcer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Announcer{w: w, color: color}
}

// Step announces the start of a named step.
func (a *Announcer) Step(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if a.color {
		prefix := styles.GetStyle("Prefix").Render(Prefix)
		fmt.Fprintf(a.w, "%s %s\n", prefix, styles.GetStyle("Step").Render(msg))
		return
	}
	fmt.Fprintf(a.w, "%s %s\n", Prefix, msg)
}
