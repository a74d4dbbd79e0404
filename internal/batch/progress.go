package batch

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress is the visual indicator advanced once before the job loop and once after
// every job.
type Progress interface {
	Start(total int, title string)
	Step(n int)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int, string) {}
func (noProgress) Step(int)          {}
func (noProgress) Finish()           {}

// Bar renders a single progress line with the bubbles progress widget.
type Bar struct {
	w     io.Writer
	bar   progress.Model
	title string
	total int
	done  int
}

func NewBar(w io.Writer) *Bar {
	return &Bar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (b *Bar) Start(total int, title string) {
	b.total = total
	b.title = title
	b.done = 0
	b.render()
}

func (b *Bar) Step(n int) {
	b.done += n
	b.render()
}

func (b *Bar) Finish() {
	fmt.Fprintf(b.w, "\r\033[2K%s\n", b.line())
}

func (b *Bar) percent() float64 {
	// one unit is consumed before the first job, so the bar spans total+1 steps
	steps := b.total + 1
	if steps <= 0 {
		return 1
	}
	p := float64(b.done) / float64(steps)
	if p > 1 {
		return 1
	}
	return p
}

func (b *Bar) line() string {
	jobs := b.done - 1
	if jobs < 0 {
		jobs = 0
	}
	return fmt.Sprintf("%s %s %d/%d", b.title, b.bar.ViewAs(b.percent()), jobs, b.total)
}

func (b *Bar) render() {
	fmt.Fprintf(b.w, "\r\033[2K%s", b.line())
}
