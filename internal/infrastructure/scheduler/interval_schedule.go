package scheduler

import (
	"fmt"
	"time"
)

// Every schedules a job at a fixed interval after each run starts.
type Every time.Duration

// Next returns the next scheduled time.
func (e Every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

func (e Every) String() string {
	return fmt.Sprintf("@every %s", time.Duration(e))
}
