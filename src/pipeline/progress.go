package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress receives advancement notifications from the Loader.
// With a record cap the unit is one accepted record, otherwise one
// fully consumed archive.
type Progress interface {
	Start(total int, unit string)
	Add(n int)
	Finish()
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Start(int, string) {}
func (NopProgress) Add(int)           {}
func (NopProgress) Finish()           {}

// BarProgress renders a single-line progress bar to w.
type BarProgress struct {
	w       io.Writer
	bar     progress.Model
	total   int
	current int
	unit    string
}

// NewBarProgress creates a bar that writes to w (usually stderr).
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *BarProgress) Start(total int, unit string) {
	p.total, p.current, p.unit = total, 0, unit
	p.render()
}

func (p *BarProgress) Add(n int) {
	p.current += n
	p.render()
}

func (p *BarProgress) Finish() {
	p.render()
	fmt.Fprintln(p.w)
}

// Current returns the number of units reported so far.
func (p *BarProgress) Current() int {
	return p.current
}

func (p *BarProgress) render() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total)
		if pct > 1 {
			pct = 1
		}
	}
	fmt.Fprintf(p.w, "\r%s %d/%d %s", p.bar.ViewAs(pct), p.current, p.total, p.unit)
}
