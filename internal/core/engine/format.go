package engine

import (
	"fmt"

	"courtside/internal/core/model"
)

// FormatElapsed renders an elapsed duration in milliseconds for display.
// Negative input is clamped to zero.
//
// Standard mode truncates to whole seconds and renders M:SS, switching to
// H:MM:SS at one hour. Basketball mode renders S.d below one minute with the
// tenths digit rounded half-up, and M:SS (whole seconds, rounded half-up)
// from one minute on.
func FormatElapsed(ms int64, mode model.Rounding) string {
	if mode == model.RoundingBasketball {
		return formatBasketball(ms)
	}
	return formatStandard(ms)
}

func formatStandard(ms int64) string {
	totalSeconds := clampMs(ms) / 1000
	return formatClock(totalSeconds)
}

func formatBasketball(ms int64) string {
	clamped := clampMs(ms)

	if clamped < 60_000 {
		tenths := (clamped + 50) / 100
		return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
	}

	return formatClock((clamped + 500) / 1000)
}

func formatClock(totalSeconds int64) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func clampMs(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms
}
