package analytics

import (
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TrendDateLayout is the date format used for trend buckets.
const TrendDateLayout = "2006-01-02"

// DefaultTrendDays is the span of the completion trend shown on the
// analytics page.
const DefaultTrendDays = 30

// DailyCount is the number of tasks completed on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CompletionTrend counts completions per UTC day over the days ending at
// now. Every day in the window is present, oldest first, including days
// with no completions.
func CompletionTrend(tasks []*domain.Task, now time.Time, days int) []DailyCount {
	if days <= 0 {
		return []DailyCount{}
	}

	today := startOfDay(now.UTC())
	first := today.AddDate(0, 0, -(days - 1))

	trend := make([]DailyCount, days)
	index := make(map[string]int, days)
	for i := range trend {
		date := first.AddDate(0, 0, i).Format(TrendDateLayout)
		trend[i] = DailyCount{Date: date}
		index[date] = i
	}

	for _, t := range domain.VisibleOnly(tasks) {
		if !t.IsCompleted() || t.CompletedAt == nil {
			continue
		}
		if i, ok := index[t.CompletedAt.UTC().Format(TrendDateLayout)]; ok {
			trend[i].Count++
		}
	}
	return trend
}
