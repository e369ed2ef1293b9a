package tutorial

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Display handles terminal progress output for the pipeline.
type Display struct {
	w       io.Writer
	title   string
	verbose bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay(title string, verbose bool) *Display {
	return &Display{w: os.Stdout, title: title, verbose: verbose}
}

// Header prints the pipeline header.
func (d *Display) Header() {
	fmt.Fprintf(d.w, "\n📚 tutorgen — %s\n", d.title)
	fmt.Fprintln(d.w, strings.Repeat("─", 68))
}

// StageStart prints a stage-in-progress line and starts an elapsed time
// ticker. In non-verbose mode the line is updated in place every second;
// in verbose mode a plain line is printed so log output can follow it.
func (d *Display) StageStart(name string) {
	if d.verbose {
		fmt.Fprintf(d.w, "⏳ %-22s running...\n", name)
		return
	}
	// Print without trailing newline so the ticker can overwrite in place.
	fmt.Fprintf(d.w, "⏳ %-22s running...", name)

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop = stop
	d.done = done
	start := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(d.w, "\r⏳ %-22s running... %.0fs",
					name, time.Since(start).Seconds())
			}
		}
	}()
}

// stopTicker stops the elapsed time goroutine and waits for it to finish.
func (d *Display) stopTicker() {
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
		d.done = nil
	}
}

// StageDone prints a completed stage line, overwriting the running line in
// non-verbose mode.
func (d *Display) StageDone(name, detail string, cost float64, duration time.Duration) {
	d.stopTicker()
	costStr := "—"
	if cost > 0 {
		costStr = fmt.Sprintf("$%.4f", cost)
	}
	prefix := "\r"
	if d.verbose {
		prefix = ""
	}
	fmt.Fprintf(d.w, "%s✅ %-22s %-32s %-10s %.1fs\n",
		prefix, name, detail, costStr, duration.Seconds())
}

// StageFailed prints a failed stage line, overwriting the running line in
// non-verbose mode.
func (d *Display) StageFailed(name string, err error) {
	d.stopTicker()
	prefix := "\r"
	if d.verbose {
		prefix = ""
	}
	fmt.Fprintf(d.w, "%s❌ %-22s %s\n", prefix, name, err.Error())
}

// Summary prints the final run summary.
func (d *Display) Summary(outputDir string, totalCost float64, totalDuration time.Duration) {
	fmt.Fprintln(d.w, strings.Repeat("─", 68))
	fmt.Fprintf(d.w, "✅ Tutorial written to %s  $%.4f  %.0fs\n\n", outputDir, totalCost, totalDuration.Seconds())
}

// Failed prints a failure summary.
func (d *Display) Failed(err error) {
	fmt.Fprintln(d.w, strings.Repeat("─", 68))
	fmt.Fprintf(d.w, "❌ Failed: %s\n\n", err.Error())
}
