package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductSameContent(t *testing.T) {
	base := Product{ID: 1, Name: "Monocle", Description: "Monocle is fine", Price: decimal.RequireFromString("12.50")}

	tests := []struct {
		name  string
		other Product
		want  bool
	}{
		{name: "distinct-instance", other: Product{ID: 1, Name: "Monocle", Description: "Monocle is fine", Price: decimal.RequireFromString("12.50")}, want: true},
		{name: "equal-price-different-scale", other: Product{ID: 1, Name: "Monocle", Description: "Monocle is fine", Price: decimal.RequireFromString("12.5")}, want: true},
		{name: "different-id", other: Product{ID: 2, Name: "Monocle", Description: "Monocle is fine", Price: decimal.RequireFromString("12.50")}, want: false},
		{name: "different-name", other: Product{ID: 1, Name: "Monocles", Description: "Monocle is fine", Price: decimal.RequireFromString("12.50")}, want: false},
		{name: "different-description", other: Product{ID: 1, Name: "Monocle", Description: "Monocle is new", Price: decimal.RequireFromString("12.50")}, want: false},
		{name: "different-price", other: Product{ID: 1, Name: "Monocle", Description: "Monocle is fine", Price: decimal.RequireFromString("13")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.SameContent(tt.other); got != tt.want {
				t.Fatalf("SameContent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommentSameContent(t *testing.T) {
	base := Comment{ID: 3, ProductID: 1, Text: "Comment 1 for Monocle", PostedAtMillis: 1700000000000}
	same := base
	if !base.SameContent(same) {
		t.Fatalf("expected identical comments to match")
	}
	changed := base
	changed.Text = "Comment 2 for Monocle"
	if base.SameContent(changed) {
		t.Fatalf("expected differing text to be unequal")
	}
}

func TestNewProductID(t *testing.T) {
	if _, err := NewProductID(0); err == nil {
		t.Fatalf("expected zero id to be rejected")
	}
	id, err := NewProductID(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Int64() != 5 {
		t.Fatalf("expected 5, got %d", id.Int64())
	}
}

func TestBuildSearchExpression(t *testing.T) {
	tests := []struct {
		term       string
		match      string
		substrings []string
	}{
		{term: "phone", match: `"phone"`},
		{term: "*phone*", match: `"phone"`},
		{term: "  rubber   chicken ", match: `"rubber" "chicken"`},
		{term: `sa"y`, match: `"sa""y"`},
		{term: "is fine", match: `"fine"`, substrings: []string{"is"}},
		{term: "X", substrings: []string{"x"}},
		{term: "***"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			expression := buildSearchExpression(tt.term)
			if expression.match != tt.match {
				t.Fatalf("match = %q, want %q", expression.match, tt.match)
			}
			if len(expression.substrings) != len(tt.substrings) {
				t.Fatalf("substrings = %v, want %v", expression.substrings, tt.substrings)
			}
			for index := range tt.substrings {
				if expression.substrings[index] != tt.substrings[index] {
					t.Fatalf("substrings = %v, want %v", expression.substrings, tt.substrings)
				}
			}
		})
	}
}
