// Package progress renders row-level progress for CLI runs. HTTP runs
// skip the bar and rely on the migration_status table instead.
package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker tracks migrated rows across tables.
type Tracker struct {
	bar     *progressbar.ProgressBar
	total   int64
	current atomic.Int64
	enabled bool
}

// New creates a tracker. A disabled tracker counts but renders nothing.
func New(enabled bool) *Tracker {
	return &Tracker{enabled: enabled}
}

// SetTotal sets the total number of rows to migrate and initializes the bar.
func (t *Tracker) SetTotal(total int64) {
	t.total = total
	if !t.enabled {
		return
	}
	t.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription("Migrating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Add advances the counter by n rows.
func (t *Tracker) Add(n int64) {
	t.current.Add(n)
	if t.bar != nil {
		t.bar.Add64(n)
	}
}

// StartTable updates the bar description for the table in flight.
func (t *Tracker) StartTable(table string) {
	if t.bar != nil {
		t.bar.Describe(fmt.Sprintf("Migrating %s", table))
		t.bar.RenderBlank()
	}
}

// Current returns rows migrated so far.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Finish completes the bar.
func (t *Tracker) Finish() {
	if t.bar != nil {
		t.bar.Finish()
		fmt.Println()
	}
}
