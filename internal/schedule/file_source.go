package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"visitbook/internal/models"
)

// FileSource serves schedules loaded from a local file.
// Replace swaps the whole list so readers never see a partial reload.
type FileSource struct {
	schedules atomic.Pointer[[]models.OpeningSchedule]
}

// NewFileSource creates a source holding list.
func NewFileSource(list []models.OpeningSchedule) *FileSource {
	fs := &FileSource{}
	fs.Replace(list)
	return fs
}

// Replace installs a new schedule list.
func (f *FileSource) Replace(list []models.OpeningSchedule) {
	cp := append([]models.OpeningSchedule(nil), list...)
	f.schedules.Store(&cp)
}

// Schedules returns the current list; year and month are ignored.
func (f *FileSource) Schedules(_ context.Context, _ int, _ time.Month) ([]models.OpeningSchedule, error) {
	p := f.schedules.Load()
	if p == nil {
		return nil, nil
	}
	return append([]models.OpeningSchedule(nil), (*p)...), nil
}
