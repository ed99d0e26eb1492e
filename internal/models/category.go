package models

// Category is a transaction category. Which categories are allowed depends on
// the transaction type; see CategoriesFor.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryShopping      Category = "shopping"
	CategoryHealthcare    Category = "healthcare"
	CategorySalary        Category = "salary"
	CategoryFreelance     Category = "freelance"
	CategoryBusiness      Category = "business"
	CategoryInvestment    Category = "investment"
	CategoryBonus         Category = "bonus"
	CategoryOther         Category = "other"
)

var categorySets = map[TransactionType][]Category{
	TransactionTypeExpense: {
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryShopping,
		CategoryHealthcare,
		CategoryOther,
	},
	TransactionTypeIncome: {
		CategorySalary,
		CategoryFreelance,
		CategoryBusiness,
		CategoryInvestment,
		CategoryBonus,
		CategoryOther,
	},
}

// CategoriesFor returns the categories allowed for t, or nil for an unknown type.
// The returned slice must not be modified.
func CategoriesFor(t TransactionType) []Category {
	return categorySets[t]
}

// Valid reports whether c belongs to any category set.
func (c Category) Valid() bool {
	for _, t := range TransactionTypes {
		if t.Allows(c) {
			return true
		}
	}
	return false
}
