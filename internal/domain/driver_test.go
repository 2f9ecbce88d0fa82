package domain

import (
	"testing"
	"time"
)

func TestDriverDispatchable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	coords := &Coordinates{Lon: 9.19, Lat: 45.46}

	cases := []struct {
		name string
		d    Driver
		want bool
	}{
		{
			name: "available with coords",
			d:    Driver{Status: DriverAvailable, Coords: coords},
			want: true,
		},
		{
			name: "available without coords",
			d:    Driver{Status: DriverAvailable},
			want: false,
		},
		{
			name: "delivering finishing within threshold",
			d: Driver{
				Status:              DriverDelivering,
				Coords:              coords,
				EstimatedFinishTime: timePtr(now.Add(5 * time.Minute)),
			},
			want: true,
		},
		{
			name: "delivering finishing after threshold",
			d: Driver{
				Status:              DriverDelivering,
				Coords:              coords,
				EstimatedFinishTime: timePtr(now.Add(30 * time.Minute)),
			},
			want: false,
		},
		{
			name: "offline",
			d:    Driver{Status: DriverOffline, Coords: coords},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.d.Dispatchable(now, 10*time.Minute)
			if got != tc.want {
				t.Errorf("Dispatchable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDriverReadyTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	finish := now.Add(5 * time.Minute)

	available := Driver{Status: DriverAvailable}
	if got := available.ReadyTime(now); !got.Equal(now) {
		t.Errorf("available ReadyTime = %v, want %v", got, now)
	}

	delivering := Driver{Status: DriverDelivering, EstimatedFinishTime: &finish}
	if got := delivering.ReadyTime(now); !got.Equal(finish) {
		t.Errorf("delivering ReadyTime = %v, want %v", got, finish)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
