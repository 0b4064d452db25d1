package prediction

import (
	"sort"
	"time"
)

const (
	lastPredictionLayout = "15:04 02-01-2006"
	noPrediction         = "N/A"
)

type Stats struct {
	TotalStudents      int     `json:"total_students"`
	TotalPredictions   int     `json:"total_predictions"`
	AverageConfidence  float64 `json:"average_confidence"` // percentage, 1 decimal place
	LastPredictionTime string  `json:"last_prediction_time"`
}

type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type Charts struct {
	GradeDistribution []GradeCount `json:"gradeDistribution"`
	Timeline          []DateCount  `json:"timeline"`
}

// ComputeStats aggregates every history entry; times are rendered in loc.
func ComputeStats(totalStudents int, entries []History, loc *time.Location) Stats {
	stats := Stats{
		TotalStudents:      totalStudents,
		TotalPredictions:   len(entries),
		LastPredictionTime: noPrediction,
	}
	if len(entries) == 0 {
		return stats
	}

	var sum float64
	var last History
	for i, h := range entries {
		sum += h.Confidence
		if i == 0 || h.CreatedAt.After(last.CreatedAt) || (h.CreatedAt.Equal(last.CreatedAt) && h.ID > last.ID) {
			last = h
		}
	}
	stats.AverageConfidence = round(sum/float64(len(entries))*100, 1)
	stats.LastPredictionTime = last.CreatedAt.In(loc).Format(lastPredictionLayout)
	return stats
}

// ComputeCharts counts entries per grade (A to F, absent grades omitted)
// and per calendar day in loc (ascending, no gap filling).
func ComputeCharts(entries []History, loc *time.Location) Charts {
	byGrade := make(map[string]int)
	byDate := make(map[string]int)
	for _, h := range entries {
		byGrade[h.Grade]++
		byDate[h.CreatedAt.In(loc).Format(dateLayout)]++
	}

	charts := Charts{
		GradeDistribution: make([]GradeCount, 0, len(byGrade)),
		Timeline:          make([]DateCount, 0, len(byDate)),
	}
	for grade, n := range byGrade {
		charts.GradeDistribution = append(charts.GradeDistribution, GradeCount{Grade: grade, Count: n})
	}
	sort.Slice(charts.GradeDistribution, func(i, j int) bool {
		return charts.GradeDistribution[i].Grade < charts.GradeDistribution[j].Grade
	})
	for date, n := range byDate {
		charts.Timeline = append(charts.Timeline, DateCount{Date: date, Count: n})
	}
	sort.Slice(charts.Timeline, func(i, j int) bool {
		return charts.Timeline[i].Date < charts.Timeline[j].Date
	})
	return charts
}

// SortNewestFirst orders entries by CreatedAt descending, then ID ascending.
func SortNewestFirst(entries []History) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
