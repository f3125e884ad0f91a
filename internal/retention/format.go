package retention

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	viewedLayout = "2006-01-02 15:04:05"
	bytesPerGB   = 1024 * 1024 * 1024
)

func movieMessage(item Item) string {
	return fmt.Sprintf("Deleting movie: %s (last viewed: %s)", item.Title, formatViewed(item.LastViewedAt))
}

func episodeMessage(item Item) string {
	return fmt.Sprintf("Deleting episode: %s from show %s (last viewed: %s)", item.Title, item.ShowTitle, formatViewed(item.LastViewedAt))
}

func formatViewed(ts *time.Time) string {
	if ts == nil {
		return "never"
	}
	return ts.Format(viewedLayout)
}

// FormatRatio renders a ratio the way users see it in qBittorrent exports:
// shortest representation, always with a fractional part.
func FormatRatio(ratio float64) string {
	s := strconv.FormatFloat(ratio, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func seedReasonText(reason SeedReason, t Torrent) string {
	if reason == ReasonRatio {
		return "Ratio: " + FormatRatio(t.Ratio)
	}
	return fmt.Sprintf("Seed Time: %.2f days", SeedDays(t.SeedingTimeSeconds))
}

// FormatGB renders bytes as binary gigabytes with two decimals.
func FormatGB(bytes int64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/bytesPerGB)
}

// FormatGBChange renders a signed free-space delta, e.g. "+5.00 GB".
func FormatGBChange(delta int64) string {
	return fmt.Sprintf("%+.2f GB", float64(delta)/bytesPerGB)
}

func freeSpaceReport(name, reason string, dryRun bool, initial, current int64) string {
	verb := "deleted"
	if dryRun {
		verb = "would be deleted"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Torrent %s: %s\n", verb, name)
	fmt.Fprintf(&b, "Reason: %s\n", reason)
	fmt.Fprintf(&b, "Initial free space: %s\n", FormatGB(initial))
	fmt.Fprintf(&b, "New free space: %s\n", FormatGB(current))
	fmt.Fprintf(&b, "Free space change: %s", FormatGBChange(current-initial))
	return b.String()
}

func missingSpaceReport(name string, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("Would delete torrent: %s, but failed to fetch new free space", name)
	}
	return fmt.Sprintf("Deleted torrent: %s, but failed to fetch new free space", name)
}
