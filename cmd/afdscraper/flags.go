package main

import (
	"fmt"
	"time"
)

// parseTimeout accepts a Go duration or a bare number of seconds
func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("timeout cannot be negative: %s", s)
		}
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err != nil || fmt.Sprint(seconds) != s {
		return 0, fmt.Errorf("invalid timeout %q: use a duration such as 30s", s)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("timeout cannot be negative: %s", s)
	}
	return time.Duration(seconds) * time.Second, nil
}
