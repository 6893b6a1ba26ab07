package news

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

const weekDays = 7

// ParsePeriod accepts "", "all", "today" and "week".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodToday, PeriodWeek:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q (want all, today or week)", s)
	}
}

// Filter narrows a cached response the way the UI tabs and search box do.
type Filter struct {
	Query   string // case-insensitive title substring
	Topic   string // trending topic term, matched like Query
	Period  Period
	HotOnly bool
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.Topic) == "" &&
		(f.Period == "" || f.Period == PeriodAll) &&
		!f.HotOnly
}

func (f Filter) Apply(items []Item, now time.Time) []Item {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	topic := strings.ToLower(strings.TrimSpace(f.Topic))

	out := make([]Item, 0, len(items))
	for _, it := range items {
		title := strings.ToLower(it.Title)
		if query != "" && !strings.Contains(title, query) {
			continue
		}
		if topic != "" && !strings.Contains(title, topic) {
			continue
		}
		if f.HotOnly && !it.IsHot {
			continue
		}
		if !inPeriod(it, f.Period, now) {
			continue
		}
		out = append(out, it)
	}
	return out
}

type PeriodCounts struct {
	All   int `json:"all"`
	Today int `json:"today"`
	Week  int `json:"week"`
}

func CountPeriods(items []Item, now time.Time) PeriodCounts {
	counts := PeriodCounts{All: len(items)}
	for _, it := range items {
		if inPeriod(it, PeriodToday, now) {
			counts.Today++
		}
		if inPeriod(it, PeriodWeek, now) {
			counts.Week++
		}
	}
	return counts
}

// inPeriod compares calendar days in UTC. Items dated in the future count as
// today; items with an unparseable date only match PeriodAll.
func inPeriod(it Item, p Period, now time.Time) bool {
	if p == "" || p == PeriodAll {
		return true
	}

	day, err := time.Parse(time.DateOnly, it.Date)
	if err != nil {
		return false
	}
	today, _ := time.Parse(time.DateOnly, FormatDate(now))
	age := int(today.Sub(day).Hours() / 24)

	switch p {
	case PeriodToday:
		return age <= 0
	case PeriodWeek:
		return age < weekDays
	}
	return false
}
