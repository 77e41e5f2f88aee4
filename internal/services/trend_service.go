package services

import (
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
)

// trendThreshold is the half-over-half percent change that counts as a trend
const trendThreshold = 15.0

// CalculateTrend summarises a monthly series: mean, least-squares slope,
// first and second half averages and the change between the first and last
// non-zero months.
func CalculateTrend(data []models.MonthlyCount) models.TrendAnalysis {
	if len(data) == 0 {
		return models.TrendAnalysis{Trend: models.TrendStable}
	}

	n := len(data)
	sum := 0
	for _, d := range data {
		sum += d.Count
	}
	average := float64(sum) / float64(n)

	xMean := float64(n-1) / 2
	var numerator, denominator float64
	for i, d := range data {
		dx := float64(i) - xMean
		numerator += dx * (float64(d.Count) - average)
		denominator += dx * dx
	}
	slope := 0.0
	if denominator != 0 {
		slope = numerator / denominator
	}

	midpoint := n / 2
	firstHalfAvg := meanCount(data[:midpoint])
	secondHalfAvg := meanCount(data[midpoint:])

	var first, last, nonZero int
	for _, d := range data {
		if d.Count <= 0 {
			continue
		}
		if nonZero == 0 {
			first = d.Count
		}
		last = d.Count
		nonZero++
	}
	percentChange := 0.0
	if nonZero >= 2 {
		percentChange = float64(last-first) / float64(first) * 100
	}

	trend := models.TrendStable
	if firstHalfAvg > 0 {
		halfChange := (secondHalfAvg - firstHalfAvg) / firstHalfAvg * 100
		switch {
		case halfChange > trendThreshold:
			trend = models.TrendIncreasing
		case halfChange < -trendThreshold:
			trend = models.TrendDecreasing
		}
	}

	return models.TrendAnalysis{
		Slope:         slope,
		PercentChange: percentChange,
		Average:       average,
		Trend:         trend,
		FirstHalfAvg:  firstHalfAvg,
		SecondHalfAvg: secondHalfAvg,
	}
}

func meanCount(data []models.MonthlyCount) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0
	for _, d := range data {
		sum += d.Count
	}
	return float64(sum) / float64(len(data))
}

// MonthKey formats t as YYYY-MM
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthsForYear lists the YYYY-MM keys of year, stopping at the current
// month when year is the year of now.
func MonthsForYear(year int, now time.Time) []string {
	months := make([]string, 0, 12)
	for m := 1; m <= 12; m++ {
		if year == now.Year() && m > int(now.Month()) {
			break
		}
		months = append(months, fmt.Sprintf("%d-%02d", year, m))
	}
	return months
}

// MonthlySeries lays byMonth out over the months of year, filling gaps with zero
func MonthlySeries(byMonth map[string]int, year int, now time.Time) []models.MonthlyCount {
	months := MonthsForYear(year, now)
	series := make([]models.MonthlyCount, 0, len(months))
	for _, month := range months {
		series = append(series, models.MonthlyCount{Month: month, Count: byMonth[month]})
	}
	return series
}

// QuarterlyTotals sums byMonth per quarter of year. A quarter is complete when
// its last month is not after the month of now. Incomplete quarters without
// data are left out.
func QuarterlyTotals(byMonth map[string]int, year int, now time.Time) []models.QuarterTotal {
	var totals []models.QuarterTotal
	for q := 1; q <= 4; q++ {
		total := 0
		for m := 3*q - 2; m <= 3*q; m++ {
			total += byMonth[fmt.Sprintf("%d-%02d", year, m)]
		}
		complete := year < now.Year() || (year == now.Year() && 3*q <= int(now.Month()))
		if !complete && total == 0 {
			continue
		}
		totals = append(totals, models.QuarterTotal{
			Quarter:  fmt.Sprintf("Q%d %d", q, year),
			Total:    total,
			Complete: complete,
		})
	}
	return totals
}

// QuarterlyChanges compares consecutive completed quarters. Pairs whose
// earlier quarter is zero are skipped.
func QuarterlyChanges(totals []models.QuarterTotal) []models.QuarterChange {
	var complete []models.QuarterTotal
	for _, total := range totals {
		if total.Complete {
			complete = append(complete, total)
		}
	}

	var changes []models.QuarterChange
	for i := 1; i < len(complete); i++ {
		prev, curr := complete[i-1], complete[i]
		if prev.Total == 0 {
			continue
		}
		changes = append(changes, models.QuarterChange{
			From:          prev.Quarter,
			To:            curr.Quarter,
			PercentChange: float64(curr.Total-prev.Total) / float64(prev.Total) * 100,
		})
	}
	return changes
}
