// Package analytics derives productivity statistics from a task list.
// Every function is pure: same input, same output, no stored state.
// Bucketing uses the local calendar day and hour of each timestamp.
package analytics

import (
	"math"
	"sort"
	"time"

	"taskdeck/model"
)

// Uncategorized is the synthetic histogram label for tasks without a
// category. It is never stored on a task.
const Uncategorized = "Uncategorized"

// CategoryCount is one bucket of the category histogram.
type CategoryCount struct {
	Category string
	Count    int
}

// TimeBandCount is one fixed time-of-day band with its completion count.
type TimeBandCount struct {
	Band  string
	Count int
}

// DayActivity holds created/completed counts for one calendar day.
type DayActivity struct {
	Day       time.Time
	Created   int
	Completed int
}

// CompletionRate returns completed/total as a percentage rounded to one
// decimal. An empty list yields 0, not NaN.
func CompletionRate(tasks []model.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	rate := float64(done) / float64(len(tasks)) * 100
	return math.Round(rate*10) / 10
}

// AvgCompletionDays returns the mean time from creation to completion in
// fractional days, computed from whole-hour differences. Tasks without a
// completion timestamp are excluded; 0 when none qualify.
func AvgCompletionDays(tasks []model.Task) float64 {
	sum := 0.0
	n := 0
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		hours := int(t.CompletedAt.Sub(t.CreatedAt).Hours())
		sum += float64(hours) / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CategoryHistogram counts tasks per category, bucketing uncategorized
// tasks under Uncategorized. Buckets are sorted by descending count,
// ties by name, so output order is deterministic.
func CategoryHistogram(tasks []model.Task) []CategoryCount {
	counts := map[string]int{}
	for _, t := range tasks {
		category := t.Category
		if category == "" {
			category = Uncategorized
		}
		counts[category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CompletionsByWeekday counts completed tasks by the local weekday of
// their completion time.
func CompletionsByWeekday(tasks []model.Task) map[time.Weekday]int {
	out := map[time.Weekday]int{}
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		out[t.CompletedAt.Local().Weekday()]++
	}
	return out
}

// CompletionsByTimeOfDay counts completed tasks in four fixed local-time
// bands: Morning [5,12), Afternoon [12,17), Evening [17,21) and Night
// for the rest. All four bands are always present, in that order.
func CompletionsByTimeOfDay(tasks []model.Task) []TimeBandCount {
	out := []TimeBandCount{
		{Band: "Morning"},
		{Band: "Afternoon"},
		{Band: "Evening"},
		{Band: "Night"},
	}
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		out[bandIndex(t.CompletedAt.Local().Hour())].Count++
	}
	return out
}

func bandIndex(hour int) int {
	switch {
	case hour >= 5 && hour < 12:
		return 0
	case hour >= 12 && hour < 17:
		return 1
	case hour >= 17 && hour < 21:
		return 2
	default:
		return 3
	}
}

// WeeklyActivity returns created/completed counts for the 7 calendar days
// ending at today inclusive, oldest first. Tasks outside the window are
// excluded; days with no activity still appear with zero counts.
func WeeklyActivity(tasks []model.Task, today time.Time) []DayActivity {
	end := dayOf(today)
	out := make([]DayActivity, 7)
	index := map[time.Time]int{}
	for i := 0; i < 7; i++ {
		day := end.AddDate(0, 0, i-6)
		out[i] = DayActivity{Day: day}
		index[day] = i
	}

	for _, t := range tasks {
		if i, ok := index[dayOf(t.CreatedAt)]; ok {
			out[i].Created++
		}
		if t.Completed && t.CompletedAt != nil {
			if i, ok := index[dayOf(*t.CompletedAt)]; ok {
				out[i].Completed++
			}
		}
	}
	return out
}

// dayOf truncates a timestamp to its local calendar day.
func dayOf(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
