// Package category infers expense categories from shop names and keeps the
// taxonomy used across the tracker.
package category

import (
	"regexp"
	"strings"
)

// DefaultCategory is used when nothing can be inferred and the caller did not
// provide a category.
const DefaultCategory = "General"

// ExpenseCategories is the closed list offered to clients and to the voice
// parser.
var ExpenseCategories = []string{
	"Groceries",
	"Home",
	"Transport",
	"Health",
	"Electronics",
	"Dining",
	"Clothing",
	"Entertainment",
	"Utilities",
	"Other",
}

type rule struct {
	category string
	pattern  *regexp.Regexp
}

// Rules are evaluated in declaration order against the lowercased shop name;
// the first match wins. Order is part of the contract.
var rules = []rule{
	{"Groceries", regexp.MustCompile(`maxi|lidl|mercator|idea|tempo|aman|dis|persu|mikro market|market`)},
	{"Home", regexp.MustCompile(`ikea|jysk|emezeta|pepco`)},
	{"Transport", regexp.MustCompile(`nis|petrol|mol|lukoil|omv|parking|taxi|bolt|car|avia|pumpa|gorivo`)},
	{"Health", regexp.MustCompile(`apoteka|pharmacy|lilly|benu|zegin|jankovic`)},
	{"Electronics", regexp.MustCompile(`gigatron|tehnomanija|comtrade|mediamarkt|tech|tahnologija`)},
	{"Dining", regexp.MustCompile(`restoran|restaurant|cafe|kafana|pizza|burger|mcdon|hrana`)},
	{"Clothing", regexp.MustCompile(`zara|h&m|mango|new\s*yorker|fashion|clothes|odeca`)},
}

// Infer returns the category for a shop name, or "" when no rule matches.
func Infer(shopName string) string {
	lower := strings.ToLower(shopName)
	for _, r := range rules {
		if r.pattern.MatchString(lower) {
			return r.category
		}
	}
	return ""
}
