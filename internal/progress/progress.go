// Package progress renders the run progress bar.
package progress

import (
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

// Bar wraps pb's progress bar with the harness theme.
type Bar struct {
	bar *pb.ProgressBar
}

// NewBar starts a bar sized for total submissions.
func NewBar(total int64, caption string) *Bar {
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetRefreshRate(125 * time.Millisecond)
	bar.SetTemplateString(`{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`)
	bar.Set("prefix", caption)
	bar.Start()

	return &Bar{bar: bar}
}

// SetCurrent moves the bar to an absolute completed count. The driver
// reports cumulative totals at batch boundaries, so absolute positioning is
// the natural update.
func (b *Bar) SetCurrent(n int64) {
	b.bar.SetCurrent(n)
}

// Finish stops the bar, drawing it full.
func (b *Bar) Finish() {
	b.bar.Finish()
}
