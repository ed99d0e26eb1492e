package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/models"
)

func rec(t models.TransactionType, c models.Category, amount string, date time.Time) Record {
	return Record{Type: t, Category: c, Amount: decimal.RequireFromString(amount), Date: date}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCompute_IncomeAndExpense(t *testing.T) {
	s := Compute([]Record{
		rec(models.TransactionTypeExpense, models.CategoryFood, "50.00", day(2024, 3, 1)),
		rec(models.TransactionTypeIncome, models.CategorySalary, "2000.00", day(2024, 3, 2)),
	})

	require.Len(t, s.TypeStats, 2)
	assert.Equal(t, models.TransactionTypeIncome, s.TypeStats[0].Type)
	assert.True(t, s.TypeStats[0].Total.Equal(decimal.NewFromInt(2000)))
	assert.EqualValues(t, 1, s.TypeStats[0].Count)
	assert.Equal(t, models.TransactionTypeExpense, s.TypeStats[1].Type)
	assert.True(t, s.TypeStats[1].Total.Equal(decimal.NewFromInt(50)))
	assert.EqualValues(t, 1, s.TypeStats[1].Count)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)

	require.Len(t, s.TypeStats, 2)
	for _, ts := range s.TypeStats {
		assert.True(t, ts.Total.IsZero())
		assert.Zero(t, ts.Count)
	}
	assert.NotNil(t, s.CategoryStats)
	assert.Empty(t, s.CategoryStats)
	assert.NotNil(t, s.MonthlyStats)
	assert.Empty(t, s.MonthlyStats)
}

func TestCompute_CategoryStats(t *testing.T) {
	s := Compute([]Record{
		rec(models.TransactionTypeExpense, models.CategoryFood, "10.50", day(2024, 1, 1)),
		rec(models.TransactionTypeExpense, models.CategoryFood, "4.50", day(2024, 1, 2)),
		rec(models.TransactionTypeExpense, models.CategoryTransport, "30", day(2024, 1, 3)),
		rec(models.TransactionTypeIncome, models.CategoryOther, "5", day(2024, 1, 4)),
		rec(models.TransactionTypeExpense, models.CategoryOther, "7", day(2024, 1, 5)),
	})

	require.Len(t, s.CategoryStats, 3)

	assert.Equal(t, models.CategoryTransport, s.CategoryStats[0].Category)
	assert.True(t, s.CategoryStats[0].Total.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, models.CategoryFood, s.CategoryStats[1].Category)
	assert.True(t, s.CategoryStats[1].Total.Equal(decimal.NewFromInt(15)))
	assert.EqualValues(t, 2, s.CategoryStats[1].Count)

	other := s.CategoryStats[2]
	assert.Equal(t, models.CategoryOther, other.Category)
	assert.Equal(t, models.TransactionTypeIncome, other.Type, "type is the first one seen")
	assert.EqualValues(t, 2, other.Count)
}

func TestCompute_CategoryTieBreaksByName(t *testing.T) {
	s := Compute([]Record{
		rec(models.TransactionTypeExpense, models.CategoryUtilities, "10", day(2024, 1, 1)),
		rec(models.TransactionTypeExpense, models.CategoryFood, "10", day(2024, 1, 2)),
	})

	require.Len(t, s.CategoryStats, 2)
	assert.Equal(t, models.CategoryFood, s.CategoryStats[0].Category)
	assert.Equal(t, models.CategoryUtilities, s.CategoryStats[1].Category)
}

func TestCompute_MonthlyStatsSortedDescending(t *testing.T) {
	s := Compute([]Record{
		rec(models.TransactionTypeExpense, models.CategoryFood, "1", day(2023, 12, 31)),
		rec(models.TransactionTypeExpense, models.CategoryFood, "2", day(2024, 2, 10)),
		rec(models.TransactionTypeIncome, models.CategorySalary, "100", day(2024, 2, 1)),
		rec(models.TransactionTypeExpense, models.CategoryFood, "3", day(2024, 2, 20)),
		rec(models.TransactionTypeExpense, models.CategoryFood, "4", day(2024, 1, 15)),
	})

	require.Len(t, s.MonthlyStats, 4)

	want := []struct {
		year  int
		month int
		typ   models.TransactionType
		total int64
		count int64
	}{
		{2024, 2, models.TransactionTypeExpense, 5, 2},
		{2024, 2, models.TransactionTypeIncome, 100, 1},
		{2024, 1, models.TransactionTypeExpense, 4, 1},
		{2023, 12, models.TransactionTypeExpense, 1, 1},
	}
	for i, w := range want {
		got := s.MonthlyStats[i]
		assert.Equal(t, w.year, got.Year, "row %d year", i)
		assert.Equal(t, w.month, got.Month, "row %d month", i)
		assert.Equal(t, w.typ, got.Type, "row %d type", i)
		assert.True(t, got.Total.Equal(decimal.NewFromInt(w.total)), "row %d total %s", i, got.Total)
		assert.Equal(t, w.count, got.Count, "row %d count", i)
	}
}

func TestCompute_MonthUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 2024-03-01 02:00 at UTC+5 is still February in UTC.
	s := Compute([]Record{
		rec(models.TransactionTypeExpense, models.CategoryFood, "1", time.Date(2024, 3, 1, 2, 0, 0, 0, loc)),
	})

	require.Len(t, s.MonthlyStats, 1)
	assert.Equal(t, 2024, s.MonthlyStats[0].Year)
	assert.Equal(t, 2, s.MonthlyStats[0].Month)
}

func TestCompute_TotalsAgree(t *testing.T) {
	records := []Record{
		rec(models.TransactionTypeExpense, models.CategoryFood, "12.34", day(2024, 1, 1)),
		rec(models.TransactionTypeExpense, models.CategoryShopping, "0.01", day(2024, 2, 1)),
		rec(models.TransactionTypeIncome, models.CategoryFreelance, "999.99", day(2024, 2, 2)),
		rec(models.TransactionTypeIncome, models.CategoryOther, "0.10", day(2024, 3, 3)),
		rec(models.TransactionTypeExpense, models.CategoryOther, "0.20", day(2024, 3, 4)),
	}
	s := Compute(records)

	want := decimal.Zero
	for _, r := range records {
		want = want.Add(r.Amount)
	}

	byType := decimal.Zero
	for _, ts := range s.TypeStats {
		byType = byType.Add(ts.Total)
	}
	byCategory := decimal.Zero
	for _, cs := range s.CategoryStats {
		byCategory = byCategory.Add(cs.Total)
	}
	byMonth := decimal.Zero
	for _, ms := range s.MonthlyStats {
		byMonth = byMonth.Add(ms.Total)
	}

	assert.True(t, want.Equal(byType), "type total %s != %s", byType, want)
	assert.True(t, want.Equal(byCategory), "category total %s != %s", byCategory, want)
	assert.True(t, want.Equal(byMonth), "monthly total %s != %s", byMonth, want)
}
