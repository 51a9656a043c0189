package inspector

import "time"

func durationHours(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}
