package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntervalValidation(t *testing.T) {
	cases := []struct {
		name    string
		day     int
		start   string
		end     string
		wantErr bool
	}{
		{"valid", 0, "09:00", "10:30", false},
		{"midnight boundary", 6, "00:00", "23:59", false},
		{"day too low", -1, "09:00", "10:00", true},
		{"day too high", 7, "09:00", "10:00", true},
		{"zero length", 2, "09:00", "09:00", true},
		{"inverted", 2, "10:00", "09:00", true},
		{"not zero padded", 1, "9:00", "10:00", true},
		{"minutes out of range", 1, "09:60", "10:00", true},
		{"garbage", 1, "morning", "10:00", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInterval(tc.day, tc.start, tc.end)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base, err := NewInterval(0, "09:00", "10:00")
	require.NoError(t, err)

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{0, "09:00", "10:00"}, true},
		{"partial overlap", Interval{0, "09:30", "10:30"}, true},
		{"contained", Interval{0, "09:15", "09:45"}, true},
		{"containing", Interval{0, "08:00", "12:00"}, true},
		{"touching after", Interval{0, "10:00", "11:00"}, false},
		{"touching before", Interval{0, "08:00", "09:00"}, false},
		{"disjoint", Interval{0, "11:00", "12:00"}, false},
		{"same time other day", Interval{1, "09:00", "10:00"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Monday", DayName(0))
	assert.Equal(t, "Sunday", DayName(6))
	assert.Equal(t, "Day 9", DayName(9))
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, UserRole("TEACHER").Valid())
	assert.False(t, UserRole("").Valid())
}
