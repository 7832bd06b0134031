package balances

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress tracks how many accounts have been fetched
type Progress interface {
	// Add increments the progress by n
	Add(n int) error
	// Close cleans up any resources used by the progress tracker
	Close()
}

// NoopProgress is a progress tracker that does nothing
type NoopProgress struct{}

func (p *NoopProgress) Add(int) error { return nil }
func (p *NoopProgress) Close()        {}

// BarProgress draws a progress bar on a terminal writer
type BarProgress struct {
	bar *progressbar.ProgressBar
	w   io.Writer
}

func (p *BarProgress) Add(n int) error {
	return p.bar.Add(n)
}

func (p *BarProgress) Close() {
	fmt.Fprint(p.w, "\r\033[K")
}

// NewBarProgress creates a progress bar for total accounts, drawn on w
func NewBarProgress(total int, w io.Writer) *BarProgress {
	return &BarProgress{
		w: w,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Fetching balances"),
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}
