package scheduler

import (
	"errors"
	"testing"
	"time"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func TestNextSlot_BeforeWorkHours(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	// Wednesday at 7:30 AM
	now := time.Date(2025, 8, 20, 7, 30, 0, 0, time.UTC)
	got := s.NextSlot(now)

	want := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextSlot_DuringWorkHours(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	// Wednesday at 10:23 AM - should round up to 10:30
	now := time.Date(2025, 8, 20, 10, 23, 0, 0, time.UTC)
	got := s.NextSlot(now)

	want := time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextSlot_ExactlyOn15Min(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	now := time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC)
	if got := s.NextSlot(now); !got.Equal(now) {
		t.Errorf("got %v, want %v", got, now)
	}
}

func TestNextSlot_AfterWorkHours(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	// Friday evening rolls over the weekend to Monday
	now := time.Date(2025, 8, 22, 19, 0, 0, 0, time.UTC)
	got := s.NextSlot(now)

	want := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextSlot_LastQuarterOfDay(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	// 17:50 rounds to 18:00 which is no longer bookable
	now := time.Date(2025, 8, 20, 17, 50, 0, 0, time.UTC)
	got := s.NextSlot(now)

	want := time.Date(2025, 8, 21, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValidateSlot(t *testing.T) {
	s := New(weekdays, "09:00", "18:00")

	tests := []struct {
		name    string
		at      time.Time
		d       time.Duration
		wantErr error
	}{
		{
			name: "inside hours",
			at:   time.Date(2025, 8, 20, 14, 0, 0, 0, time.UTC),
			d:    time.Hour,
		},
		{
			name: "ends exactly at day end",
			at:   time.Date(2025, 8, 20, 17, 0, 0, 0, time.UTC),
			d:    time.Hour,
		},
		{
			name:    "saturday",
			at:      time.Date(2025, 8, 23, 10, 0, 0, 0, time.UTC),
			d:       time.Hour,
			wantErr: ErrNotWorkday,
		},
		{
			name:    "starts too early",
			at:      time.Date(2025, 8, 20, 8, 30, 0, 0, time.UTC),
			d:       time.Hour,
			wantErr: ErrOutsideHours,
		},
		{
			name:    "runs past day end",
			at:      time.Date(2025, 8, 20, 17, 30, 0, 0, time.UTC),
			d:       time.Hour,
			wantErr: ErrOutsideHours,
		},
		{
			name:    "zero duration",
			at:      time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC),
			wantErr: ErrInvalidMinutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateSlot(tt.at, tt.d)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsWorkday(t *testing.T) {
	s := New([]string{"Wednesday"}, "09:00", "18:00")
	if !s.IsWorkday(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Wednesday to be a workday")
	}
	if s.IsWorkday(time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Thursday not to be a workday")
	}
}
