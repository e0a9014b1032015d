package ledger

import (
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as e.g. "1時間0分5秒". Hours are omitted when zero,
// minutes are omitted only when both hours and minutes are zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var sb strings.Builder
	if hours > 0 {
		sb.WriteString(strconv.FormatInt(hours, 10))
		sb.WriteString("時間")
	}
	if minutes > 0 || hours > 0 {
		sb.WriteString(strconv.FormatInt(minutes, 10))
		sb.WriteString("分")
	}
	sb.WriteString(strconv.FormatInt(seconds, 10))
	sb.WriteString("秒")

	return sb.String()
}
