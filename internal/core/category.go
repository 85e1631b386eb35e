package core

// ExpenseCategory is the closed set of expense categories a company can book.
type ExpenseCategory string

// DREBucket is the income-statement line an expense category rolls up into.
type DREBucket string

const (
	CategoryCostOfProducts ExpenseCategory = "Custo de Produtos"
	CategoryCMV            ExpenseCategory = "CMV"
	CategoryAdministrative ExpenseCategory = "Administrativo"
	CategorySalaries       ExpenseCategory = "Salários"
	CategoryMarketing      ExpenseCategory = "Marketing"
	CategorySales          ExpenseCategory = "Vendas"
	CategoryFinancial      ExpenseCategory = "Financeiro"
	CategoryInterest       ExpenseCategory = "Juros"
	CategoryRent           ExpenseCategory = "Aluguel"
	CategoryOther          ExpenseCategory = "Outros"
)

const (
	BucketCOGS           DREBucket = "cogs"
	BucketAdministrative DREBucket = "administrative"
	BucketSales          DREBucket = "sales"
	BucketFinancial      DREBucket = "financial"
	BucketOther          DREBucket = "other"
)

var categoryBuckets = map[ExpenseCategory]DREBucket{
	CategoryCostOfProducts: BucketCOGS,
	CategoryCMV:            BucketCOGS,
	CategoryAdministrative: BucketAdministrative,
	CategorySalaries:       BucketAdministrative,
	CategoryMarketing:      BucketSales,
	CategorySales:          BucketSales,
	CategoryFinancial:      BucketFinancial,
	CategoryInterest:       BucketFinancial,
	CategoryRent:           BucketOther,
	CategoryOther:          BucketOther,
}

// ExpenseCategories lists every category in display order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryCostOfProducts, CategoryCMV,
		CategoryAdministrative, CategorySalaries,
		CategoryMarketing, CategorySales,
		CategoryFinancial, CategoryInterest,
		CategoryRent, CategoryOther,
	}
}

func (c ExpenseCategory) Valid() bool {
	_, ok := categoryBuckets[c]
	return ok
}

// Bucket returns the DRE bucket for c. Anything outside the table is BucketOther.
func (c ExpenseCategory) Bucket() DREBucket {
	if b, ok := categoryBuckets[c]; ok {
		return b
	}
	return BucketOther
}

// ParseExpenseCategory returns the category named s.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	c := ExpenseCategory(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}
