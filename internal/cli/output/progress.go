// Package output provides output formatting for the Keyline CLI.
package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar displays request progress for the bench command.
type ProgressBar struct {
	w       io.Writer
	label   string
	total   int64
	current int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a progress bar expecting total operations.
func NewProgressBar(w io.Writer, label string, total int64) *ProgressBar {
	return &ProgressBar{
		w:     w,
		label: label,
		total: total,
		width: 40,
	}
}

// Increment adds n completed operations and redraws.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render()
}

// Finish fills the bar and terminates the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.total
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d", p.label, p.current)
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d)",
		p.label, bar, percent*100, p.current, p.total)
}
