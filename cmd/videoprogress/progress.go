package main

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// progressView redraws a terminal progress bar from frame counters that the
// encoding goroutine updates.
type progressView struct {
	out     io.Writer
	bar     progress.Model
	written atomic.Int64
	total   atomic.Int64

	done chan struct{}
	wg   sync.WaitGroup
}

func newProgressView(out io.Writer) *progressView {
	return &progressView{
		out:  out,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		done: make(chan struct{}),
	}
}

// Update matches engine.VideoProject.OnProgress.
func (v *progressView) Update(written, total int) {
	v.written.Store(int64(written))
	v.total.Store(int64(total))
}

func (v *progressView) Start() {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-v.done:
				v.render()
				fmt.Fprintln(v.out)
				return
			case <-ticker.C:
				v.render()
			}
		}
	}()
}

func (v *progressView) Stop() {
	close(v.done)
	v.wg.Wait()
}

func (v *progressView) render() {
	written, total := v.written.Load(), v.total.Load()
	fmt.Fprintf(v.out, "\r[>] %s %d/%d", v.bar.ViewAs(ratio(written, total)), written, total)
}

func ratio(written, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return min(float64(written)/float64(total), 1)
}
