package domain

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotPrefix starts every snapshot file name.
const SnapshotPrefix = "fib."

const stampLayout = "20060102150405"

// stampLen is the length of a stamp: date-time plus nine nanosecond digits.
const stampLen = len(stampLayout) + 9

// Stamp formats t as a fixed-width UTC timestamp whose lexical order is
// its chronological order.
func Stamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%09d", t.Format(stampLayout), t.Nanosecond())
}

// SnapshotName returns the file name for a snapshot taken at t and
// encoded in the format identified by ext (without a leading dot).
func SnapshotName(t time.Time, ext string) string {
	return SnapshotPrefix + Stamp(t) + "." + ext
}

// ParseSnapshotName splits a snapshot file name into its stamp and extension.
// ok is false for names that do not follow the fib.<stamp>.<ext> pattern.
func ParseSnapshotName(name string) (stamp, ext string, ok bool) {
	rest, found := strings.CutPrefix(name, SnapshotPrefix)
	if !found {
		return "", "", false
	}
	stamp, ext, found = strings.Cut(rest, ".")
	if !found || ext == "" || len(stamp) != stampLen {
		return "", "", false
	}
	for _, r := range stamp {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return stamp, ext, true
}
