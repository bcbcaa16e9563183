package slots

import (
	"reflect"
	"testing"
	"time"

	"visitbook/internal/models"
)

var testSchedule = &models.OpeningSchedule{
	SeasonName:    "Summer",
	WeekdaysOpen:  "09:00",
	WeekdaysClose: "18:00",
	WeekendOpen:   "10:00",
	WeekendClose:  "16:00",
	IsActive:      true,
}

// 2026-10-14 is a Wednesday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		now      time.Time
		wantKind Kind
		want     []string
	}{
		{
			name:     "wednesday before opening",
			date:     at(14, 0, 0),
			now:      at(14, 7, 0),
			wantKind: KindOpen,
			want:     []string{"09:00-11:00", "11:00-13:00", "13:00-15:00", "15:00-17:00"},
		},
		{
			name:     "wednesday afternoon rounds up to next hour",
			date:     at(14, 0, 0),
			now:      at(14, 14, 20),
			wantKind: KindOpen,
			want:     []string{"15:00-17:00"},
		},
		{
			name:     "exact hour is kept",
			date:     at(14, 0, 0),
			now:      at(14, 13, 0),
			wantKind: KindOpen,
			want:     []string{"13:00-15:00", "15:00-17:00"},
		},
		{
			name:     "too late for any window",
			date:     at(14, 0, 0),
			now:      at(14, 16, 5),
			wantKind: KindOpen,
			want:     nil,
		},
		{
			name:     "future weekday ignores now",
			date:     at(15, 0, 0),
			now:      at(14, 17, 45),
			wantKind: KindOpen,
			want:     []string{"09:00-11:00", "11:00-13:00", "13:00-15:00", "15:00-17:00"},
		},
		{
			name:     "saturday uses weekend hours",
			date:     at(17, 0, 0),
			now:      at(14, 8, 0),
			wantKind: KindOpen,
			want:     []string{"10:00-12:00", "12:00-14:00", "14:00-16:00"},
		},
		{
			name:     "monday closed",
			date:     at(19, 0, 0),
			now:      at(14, 8, 0),
			wantKind: KindClosed,
			want:     nil,
		},
		{
			name:     "past monday still closed",
			date:     at(12, 0, 0),
			now:      at(14, 8, 0),
			wantKind: KindClosed,
			want:     nil,
		},
		{
			name:     "past day",
			date:     at(13, 0, 0),
			now:      at(14, 8, 0),
			wantKind: KindPast,
			want:     nil,
		},
	}

	gen := NewGenerator(DefaultSlotMinutes)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := gen.Generate(testSchedule, tt.date, tt.now)
			if day.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", day.Kind, tt.wantKind)
			}
			got := day.Keys()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("slots = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerate_SlotsAreContiguousAndWithinClose(t *testing.T) {
	gen := NewGenerator(DefaultSlotMinutes)
	schedules := []models.OpeningSchedule{
		{WeekdaysOpen: "09:00", WeekdaysClose: "18:00", WeekendOpen: "09:00", WeekendClose: "18:00"},
		{WeekdaysOpen: "09:30", WeekdaysClose: "17:15", WeekendOpen: "08:00", WeekendClose: "20:00"},
		{WeekdaysOpen: "10:00", WeekdaysClose: "11:00", WeekendOpen: "10:00", WeekendClose: "12:00"},
	}

	for _, s := range schedules {
		s := s
		for d := 15; d <= 25; d++ {
			day := gen.Generate(&s, at(d, 0, 0), at(14, 6, 0))
			open, closeStr := s.HoursFor(day.Date.Weekday())
			openAt, _ := models.ParseClock(open)
			closeAt, _ := models.ParseClock(closeStr)

			for i, slot := range day.Slots {
				if slot.Duration() != DefaultSlotMinutes {
					t.Errorf("%s: slot %s has duration %d", day.Date.Format(models.DateFormat), slot, slot.Duration())
				}
				if slot.EndMinute > closeAt {
					t.Errorf("%s: slot %s ends after close", day.Date.Format(models.DateFormat), slot)
				}
				if i == 0 && slot.StartMinute != openAt {
					t.Errorf("%s: first slot %s does not start at opening", day.Date.Format(models.DateFormat), slot)
				}
				if i > 0 && slot.StartMinute != day.Slots[i-1].EndMinute {
					t.Errorf("%s: slot %s does not follow %s", day.Date.Format(models.DateFormat), slot, day.Slots[i-1])
				}
			}
		}
	}
}

func TestGenerate_TodayNeverBeforeNextFullHour(t *testing.T) {
	gen := NewGenerator(DefaultSlotMinutes)
	for minute := 0; minute < 24*60; minute += 7 {
		now := at(14, minute/60, minute%60)
		threshold := NextFullHour(now)
		day := gen.Generate(testSchedule, at(14, 0, 0), now)
		for _, slot := range day.Slots {
			if slot.StartMinute < threshold {
				t.Fatalf("now=%s: slot %s starts before %s", now.Format("15:04"), slot, models.FormatClock(threshold))
			}
		}
	}
}

func TestNextFullHour(t *testing.T) {
	if got := NextFullHour(at(14, 14, 20)); got != 15*60 {
		t.Errorf("14:20 -> %d, want %d", got, 15*60)
	}
	if got := NextFullHour(at(14, 7, 0)); got != 7*60 {
		t.Errorf("07:00 -> %d, want %d", got, 7*60)
	}
	withSeconds := time.Date(2026, time.October, 14, 9, 0, 30, 0, time.UTC)
	if got := NextFullHour(withSeconds); got != 10*60 {
		t.Errorf("09:00:30 -> %d, want %d", got, 10*60)
	}
}

func TestToSlotInfo(t *testing.T) {
	gen := NewGenerator(DefaultSlotMinutes)
	day := gen.Generate(testSchedule, at(15, 0, 0), at(14, 8, 0))
	info := ToSlotInfo(day.Slots, models.SlotOccupancy{"09:00-11:00": 2, "11:00-13:00": 1}, 2)

	if len(info) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(info))
	}
	if info[0].Available || info[0].Booked != 2 {
		t.Errorf("first slot should be full: %+v", info[0])
	}
	if !info[1].Available || info[1].Start != "11:00" || info[1].End != "13:00" {
		t.Errorf("unexpected second slot: %+v", info[1])
	}
}
