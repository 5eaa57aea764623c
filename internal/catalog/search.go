package catalog

import "strings"

// MaxSearchResults caps a single search.
const MaxSearchResults = 20

// Search returns cars whose name, brand or tags contain term, ignoring case, in
// catalog order. Callers reject empty terms.
func (idx *Index) Search(term string) []Product {
	needle := strings.ToLower(term)

	var results []Product
	for _, car := range idx.catalog.Cars {
		if matches(car, needle) {
			results = append(results, car)
			if len(results) == MaxSearchResults {
				break
			}
		}
	}
	return results
}

func matches(car Product, needle string) bool {
	return strings.Contains(strings.ToLower(car.Name), needle) ||
		strings.Contains(strings.ToLower(car.Brand), needle) ||
		strings.Contains(strings.ToLower(car.Tags), needle)
}
