package room

import "fmt"

// urgentThreshold is where the countdown is flagged as about to expire.
const urgentThreshold = 60

// FormatCountdown renders remaining seconds as m:ss, or --:-- when unknown.
func FormatCountdown(seconds int, known bool) string {
	if !known {
		return "--:--"
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Urgent reports whether a known countdown is under one minute.
func Urgent(seconds int, known bool) bool {
	return known && seconds < urgentThreshold
}
