// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samuelfneumann/sflearn/utils/floatutils"
)

// ProgressBar implements progress bar functionality that must be
// manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be written.
//
// ProgressBar is not safe for concurrent use.
type ProgressBar struct {
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new ProgressBar which is width characters wide, writes
// to out, and is complete after max calls to Increment
func New(out io.Writer, width, max int) *ProgressBar {
	if max < 1 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	p.currentProgress = floatutils.Clip(p.currentProgress+1, 0,
		p.maxProgress)
}

// Fraction returns the fraction of progress made
func (p *ProgressBar) Fraction() float64 {
	return p.currentProgress / p.maxProgress
}

// String returns the progress bar without the elapsed time
func (p *ProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.Fraction() * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	fmt.Fprintf(&p.bar, "| [%.2f%%]", p.Fraction()*100)
	return p.bar.String()
}

// Display writes the progress bar over the current terminal line
func (p *ProgressBar) Display() {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v elapsed: %v", p.String(),
		time.Since(p.startTime).Truncate(time.Second))
}

// Close moves the output past the progress bar
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
