package core

import "testing"

func TestCategoryBuckets(t *testing.T) {
	tests := []struct {
		category ExpenseCategory
		want     DREBucket
	}{
		{CategoryCostOfProducts, BucketCOGS},
		{CategoryCMV, BucketCOGS},
		{CategoryAdministrative, BucketAdministrative},
		{CategorySalaries, BucketAdministrative},
		{CategoryMarketing, BucketSales},
		{CategorySales, BucketSales},
		{CategoryFinancial, BucketFinancial},
		{CategoryInterest, BucketFinancial},
		{CategoryRent, BucketOther},
		{CategoryOther, BucketOther},
		{ExpenseCategory("legacy free text"), BucketOther},
		{ExpenseCategory(""), BucketOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := tt.category.Bucket(); got != tt.want {
				t.Errorf("Bucket(%q) = %s, want %s", tt.category, got, tt.want)
			}
		})
	}
}

func TestEveryListedCategoryIsMapped(t *testing.T) {
	for _, c := range ExpenseCategories() {
		if !c.Valid() {
			t.Errorf("category %q is listed but not mapped", c)
		}
	}
	if len(ExpenseCategories()) != len(categoryBuckets) {
		t.Errorf("listed %d categories, mapped %d", len(ExpenseCategories()), len(categoryBuckets))
	}
}

func TestParseExpenseCategory(t *testing.T) {
	if c, err := ParseExpenseCategory("CMV"); err != nil || c != CategoryCMV {
		t.Fatalf("ParseExpenseCategory(CMV) = %q, %v", c, err)
	}
	if _, err := ParseExpenseCategory("cmv"); err == nil {
		t.Fatal("categories are case sensitive")
	}
}
