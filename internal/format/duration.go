package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders an evaluation or per-operation time in the
// largest unit that keeps an integer count: "850ns", "42µs", "12ms". From one
// second up it is d rounded to the millisecond ("1.5s", "2m3.25s").
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

