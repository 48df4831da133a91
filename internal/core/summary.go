package core

import "math"

// Chart colors per category, fixed by the dashboard design.
var categoryColors = map[Category]string{
	CategoryRumah:   "#3b82f6",
	CategoryAnak:    "#10b981",
	CategoryHoliday: "#f59e0b",
}

type (
	// Totals is a sum/count pair over a set of transactions.
	Totals struct {
		Sum   int64
		Count int
	}

	// MonthBucket splits one calendar month into income and expense flow.
	// Negative holds the absolute value of the expense sum.
	MonthBucket struct {
		Month    string
		Positive int64
		Negative int64
	}

	// ShareEntry is one slice of the category distribution chart.
	ShareEntry struct {
		Category Category
		Sum      int64
		Color    string
		Percent  float64
	}

	// Flow summarizes overall money movement. Expense holds the absolute
	// value of the negative sum; Net is Income minus Expense.
	Flow struct {
		Income  int64
		Expense int64
		Net     int64
		Count   int
	}
)

// Indonesian short month names, January first.
var shortMonths = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// MonthKey renders a date as short month plus 2-digit year ("Jan 25").
func MonthKey(d Date) string {
	return shortMonths[int(d.Month())-1] + " " + d.Format("06")
}

// CategoryTotal sums transactions of one category. Callers pass an active
// snapshot; this function does not re-check the active flag.
func CategoryTotal(records []Transaction, category Category) Totals {
	var t Totals
	for _, r := range records {
		if r.Category == category {
			t.Sum += r.Nominal
			t.Count++
		}
	}
	return t
}

// GrandTotal sums every transaction regardless of category. Unknown category
// values are included here even though no per-category total covers them.
func GrandTotal(records []Transaction) Totals {
	var t Totals
	for _, r := range records {
		t.Sum += r.Nominal
		t.Count++
	}
	return t
}

// MonthlyBuckets groups transactions by calendar month. Buckets appear in
// first-occurrence order of the scan: records arrive sorted date-descending,
// so the result is reverse-chronological. Zero amounts contribute to neither
// sum. At most maxMonths buckets are returned; the rest are dropped (a
// display limit, not a correctness constraint).
func MonthlyBuckets(records []Transaction, maxMonths int) []MonthBucket {
	index := make(map[string]int)
	var buckets []MonthBucket
	for _, r := range records {
		key := MonthKey(r.Date)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, MonthBucket{Month: key})
		}
		switch {
		case r.Nominal > 0:
			buckets[i].Positive += r.Nominal
		case r.Nominal < 0:
			buckets[i].Negative += -r.Nominal
		}
	}
	if maxMonths >= 0 && len(buckets) > maxMonths {
		buckets = buckets[:maxMonths]
	}
	return buckets
}

// FlowTotal splits the overall sum into income and expense flow.
func FlowTotal(records []Transaction) Flow {
	var f Flow
	for _, r := range records {
		switch {
		case r.Nominal > 0:
			f.Income += r.Nominal
		case r.Nominal < 0:
			f.Expense += -r.Nominal
		}
		f.Count++
	}
	f.Net = f.Income - f.Expense
	return f
}

// CategoryShare computes the category distribution for the pie chart.
// Categories whose total is zero or negative are dropped so the chart never
// shows a nonsensical slice. Percentages are shares of the included sums,
// rounded to one decimal; all zero when the included total is zero.
func CategoryShare(records []Transaction) []ShareEntry {
	var entries []ShareEntry
	var total int64
	for _, c := range Categories() {
		t := CategoryTotal(records, c)
		if t.Sum <= 0 {
			continue
		}
		entries = append(entries, ShareEntry{
			Category: c,
			Sum:      t.Sum,
			Color:    categoryColors[c],
		})
		total += t.Sum
	}
	if total == 0 {
		return entries
	}
	for i := range entries {
		pct := float64(entries[i].Sum) / float64(total) * 100
		entries[i].Percent = math.Round(pct*10) / 10
	}
	return entries
}
