package services

import (
	"testing"
	"time"

	"troskovi/internal/core"
)

func TestNextDate(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		freq core.Frequency
		want time.Time
	}{
		{
			name: "weekly",
			from: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			freq: core.Weekly,
			want: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "biweekly",
			from: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			freq: core.Biweekly,
			want: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly",
			from: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			freq: core.Monthly,
			want: time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly clamps jan 31 to feb 28",
			from: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
			freq: core.Monthly,
			want: time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly clamps to feb 29 in leap year",
			from: time.Date(2028, 1, 31, 9, 0, 0, 0, time.UTC),
			freq: core.Monthly,
			want: time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly december wraps the year",
			from: time.Date(2026, 12, 31, 9, 0, 0, 0, time.UTC),
			freq: core.Monthly,
			want: time.Date(2027, 1, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "yearly",
			from: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
			freq: core.Yearly,
			want: time.Date(2027, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "yearly clamps feb 29 to feb 28",
			from: time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC),
			freq: core.Yearly,
			want: time.Date(2029, 2, 28, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDate(tt.from, tt.freq)
			if err != nil {
				t.Fatalf("NextDate: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDateAppliedTwice(t *testing.T) {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		freq core.Frequency
		want time.Time
	}{
		{core.Weekly, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
		{core.Biweekly, time.Date(2026, 3, 29, 9, 0, 0, 0, time.UTC)},
		{core.Monthly, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		{core.Yearly, time.Date(2028, 3, 1, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			once, err := NextDate(from, tt.freq)
			if err != nil {
				t.Fatalf("NextDate: %v", err)
			}
			twice, err := NextDate(once, tt.freq)
			if err != nil {
				t.Fatalf("NextDate: %v", err)
			}
			if !twice.Equal(tt.want) {
				t.Errorf("NextDate twice = %v, want %v", twice, tt.want)
			}
		})
	}
}

func TestNextDateRejectsUnknownFrequency(t *testing.T) {
	if _, err := NextDate(time.Now(), "daily"); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
