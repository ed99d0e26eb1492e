// Package stats computes the summary statistics shown on the dashboard:
// totals by transaction type, by category and by calendar month.
//
// An Accumulator is fed one Record at a time, so callers can stream rows from
// the store without materializing the owner's full transaction set.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// Record is the projection of a transaction needed for aggregation.
type Record struct {
	Type     models.TransactionType
	Category models.Category
	Amount   decimal.Decimal
	Date     time.Time
}

// TypeStat is the total and count of one transaction type.
type TypeStat struct {
	Type  models.TransactionType `json:"type"`
	Total decimal.Decimal        `json:"total"`
	Count int64                  `json:"count"`
}

// CategoryStat is the total and count of one category. Type is the type of
// the first transaction seen in that category.
type CategoryStat struct {
	Category models.Category        `json:"category"`
	Type     models.TransactionType `json:"type"`
	Total    decimal.Decimal        `json:"total"`
	Count    int64                  `json:"count"`
}

// MonthlyStat is the total and count of one type within a calendar month (UTC).
type MonthlyStat struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Type  models.TransactionType `json:"type"`
	Total decimal.Decimal        `json:"total"`
	Count int64                  `json:"count"`
}

// Summary holds the three independent aggregates.
type Summary struct {
	TypeStats     []TypeStat     `json:"typeStats"`
	CategoryStats []CategoryStat `json:"categoryStats"`
	MonthlyStats  []MonthlyStat  `json:"monthlyStats"`
}

type monthKey struct {
	year  int
	month int
	typ   models.TransactionType
}

// Accumulator folds records into a Summary. The zero value is not usable; use NewAccumulator.
type Accumulator struct {
	byType     map[models.TransactionType]*TypeStat
	byCategory map[models.Category]*CategoryStat
	byMonth    map[monthKey]*MonthlyStat
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		byType:     make(map[models.TransactionType]*TypeStat),
		byCategory: make(map[models.Category]*CategoryStat),
		byMonth:    make(map[monthKey]*MonthlyStat),
	}
}

// Add folds one record into the aggregates. Records should be added in
// chronological order so that CategoryStat.Type reflects the first-seen type.
func (a *Accumulator) Add(r Record) {
	ts, ok := a.byType[r.Type]
	if !ok {
		ts = &TypeStat{Type: r.Type}
		a.byType[r.Type] = ts
	}
	ts.Total = ts.Total.Add(r.Amount)
	ts.Count++

	cs, ok := a.byCategory[r.Category]
	if !ok {
		cs = &CategoryStat{Category: r.Category, Type: r.Type}
		a.byCategory[r.Category] = cs
	}
	cs.Total = cs.Total.Add(r.Amount)
	cs.Count++

	d := r.Date.UTC()
	key := monthKey{year: d.Year(), month: int(d.Month()), typ: r.Type}
	ms, ok := a.byMonth[key]
	if !ok {
		ms = &MonthlyStat{Year: key.year, Month: key.month, Type: r.Type}
		a.byMonth[key] = ms
	}
	ms.Total = ms.Total.Add(r.Amount)
	ms.Count++
}

// Summary returns the aggregates in a deterministic order:
//   - type stats: income then expense, always both, then any other type seen
//   - category stats: total descending, then category name
//   - monthly stats: year and month descending, then type
func (a *Accumulator) Summary() Summary {
	s := Summary{
		TypeStats:     make([]TypeStat, 0, len(models.TransactionTypes)),
		CategoryStats: make([]CategoryStat, 0, len(a.byCategory)),
		MonthlyStats:  make([]MonthlyStat, 0, len(a.byMonth)),
	}

	for _, t := range models.TransactionTypes {
		if ts, ok := a.byType[t]; ok {
			s.TypeStats = append(s.TypeStats, *ts)
		} else {
			s.TypeStats = append(s.TypeStats, TypeStat{Type: t, Total: decimal.Zero})
		}
	}
	var extra []TypeStat
	for t, ts := range a.byType {
		if !t.Valid() {
			extra = append(extra, *ts)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Type < extra[j].Type })
	s.TypeStats = append(s.TypeStats, extra...)

	for _, cs := range a.byCategory {
		s.CategoryStats = append(s.CategoryStats, *cs)
	}
	sort.Slice(s.CategoryStats, func(i, j int) bool {
		ci, cj := s.CategoryStats[i], s.CategoryStats[j]
		if cmp := ci.Total.Cmp(cj.Total); cmp != 0 {
			return cmp > 0
		}
		return ci.Category < cj.Category
	})

	for _, ms := range a.byMonth {
		s.MonthlyStats = append(s.MonthlyStats, *ms)
	}
	sort.Slice(s.MonthlyStats, func(i, j int) bool {
		mi, mj := s.MonthlyStats[i], s.MonthlyStats[j]
		if mi.Year != mj.Year {
			return mi.Year > mj.Year
		}
		if mi.Month != mj.Month {
			return mi.Month > mj.Month
		}
		return mi.Type < mj.Type
	})

	return s
}

// Compute aggregates records in the order given.
func Compute(records []Record) Summary {
	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	return acc.Summary()
}
