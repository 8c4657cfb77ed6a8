// Package tariffs holds the canonical price table for access keys.
// Every surface that mentions a duration or a price reads it from here.
package tariffs

import "fmt"

// Tariff binds an access duration to its price.
type Tariff struct {
	Days  int
	Price int
	Label string
}

// Catalog lists purchasable tariffs in display order.
func Catalog() []Tariff {
	return []Tariff{
		{Days: 30, Price: 100, Label: "1 month"},
		{Days: 90, Price: 250, Label: "3 months"},
		{Days: 180, Price: 450, Label: "6 months"},
		{Days: 365, Price: 800, Label: "12 months"},
	}
}

// ByDays looks up a tariff by its duration.
func ByDays(days int) (Tariff, bool) {
	for _, t := range Catalog() {
		if t.Days == days {
			return t, true
		}
	}
	return Tariff{}, false
}

// Label returns the human label for a duration, falling back to a
// day count for durations outside the catalog (legacy rows).
func Label(days int) string {
	if t, ok := ByDays(days); ok {
		return t.Label
	}
	return fmt.Sprintf("%d days", days)
}
