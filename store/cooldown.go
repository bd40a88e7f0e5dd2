package store

import (
	"math"
	"strconv"
	"time"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

// remainingSeconds is window minus whole elapsed seconds, or 0 once the
// window has passed. A limited user always sees at least 1.
func remainingSeconds(window, elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= window {
		return 0
	}
	remaining := int(window/time.Second) - int(elapsed/time.Second)
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

func userKey(userID types.UserID) string {
	return strconv.FormatInt(int64(userID), 10)
}
