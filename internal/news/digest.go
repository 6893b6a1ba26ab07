package news

import (
	"fmt"
	"strings"
	"time"
)

const digestRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatDigest renders up to limit hot items as a plain-text digest suitable
// for pasting into chat.
func FormatDigest(items []Item, limit int, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔥 AI News Digest · %s\n", FormatDate(now)))
	b.WriteString(digestRule + "\n\n")

	count := 0
	for _, it := range items {
		if !it.IsHot {
			continue
		}
		if limit > 0 && count >= limit {
			break
		}
		count++
		b.WriteString(formatDigestItem(it, count))
	}

	if count == 0 {
		b.WriteString("No hot stories right now.\n")
	}

	b.WriteString("\n" + digestRule + "\n")
	b.WriteString(fmt.Sprintf("%d hot %s", count, pluralize(count, "story", "stories")))

	return b.String()
}

func formatDigestItem(it Item, number int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d. %s\n", number, strings.TrimSpace(it.Title)))

	meta := it.Source
	if it.Score > 0 {
		meta += fmt.Sprintf(" · %d points", it.Score)
	}
	if meta != "" {
		b.WriteString("   " + meta + "\n")
	}
	b.WriteString("   " + it.URL + "\n\n")

	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
