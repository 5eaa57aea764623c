package catalog

import (
	"slices"

	"storebot/internal/logger"
)

// Bucket names.
const (
	BucketLuxury   = "luxury"
	BucketSports   = "sports"
	BucketAmerican = "american"
	BucketJapanese = "japanese"
	BucketAll      = "all"
)

type bucketRule struct {
	name   string
	brands []string
}

// bucketRules is checked in order; a brand lands in the first bucket that lists it.
var bucketRules = []bucketRule{
	{BucketLuxury, []string{"Bugatti", "McLaren", "Lamborghini", "Ferrari", "Koenigsegg", "Pagani", "Rolls-Royce"}},
	{BucketSports, []string{"Porsche", "BMW", "Mercedes-Benz", "Audi", "Aston"}},
	{BucketAmerican, []string{"Ford", "Chevrolet", "Dodge", "Cadillac", "Hennessey"}},
	{BucketJapanese, []string{"Nissan", "Toyota", "Honda", "Mazda", "Subaru", "Lexus", "Acura"}},
}

// carCategories are the car menu sections in menu order.
var carCategories = []Category{
	{Key: "csr2_cars_luxury", Name: "🏆 LUXURY CARS", Emoji: "🏆", Bucket: BucketLuxury, Limit: 20},
	{Key: "csr2_cars_sports", Name: "🏁 SPORTS CARS", Emoji: "🏁", Bucket: BucketSports, Limit: 20},
	{Key: "csr2_cars_american", Name: "🇺🇸 AMERICAN CARS", Emoji: "🇺🇸", Bucket: BucketAmerican, Limit: 20},
	{Key: "csr2_cars_japanese", Name: "🇯🇵 JAPANESE CARS", Emoji: "🇯🇵", Bucket: BucketJapanese, Limit: 20},
	{Key: "csr2_cars_all", Name: "🏎️ ALL CARS", Emoji: "🏎️", Bucket: BucketAll, Limit: 50},
}

// BucketOf returns the bucket a brand belongs to, or "" when it is only listed
// under BucketAll.
func BucketOf(brand string) string {
	for _, rule := range bucketRules {
		if slices.Contains(rule.brands, brand) {
			return rule.name
		}
	}
	return ""
}

// Index holds the derived lookup views of one catalog. It is read-only once built.
type Index struct {
	catalog    *Catalog
	cars       map[string]Product
	items      map[string]Product
	byBrand    map[string][]Product
	brands     []string
	buckets    map[string][]Product
	categories []Category
	byKey      map[string]int
	refs       map[string]string // short ref -> product id
}

// NewIndex derives every view from c. It has no other inputs, so rebuilding for the
// same catalog yields an equal index.
func NewIndex(c *Catalog) *Index {
	if c == nil {
		c = &Catalog{}
	}

	idx := &Index{
		catalog: c,
		cars:    make(map[string]Product, len(c.Cars)),
		items:   make(map[string]Product),
		byBrand: make(map[string][]Product),
		buckets: make(map[string][]Product, len(bucketRules)+1),
		byKey:   make(map[string]int),
		refs:    make(map[string]string),
	}

	for _, car := range c.Cars {
		idx.cars[car.ID] = car
		idx.refs[ShortRef(car.ID)] = car.ID

		if _, ok := idx.byBrand[car.Brand]; !ok {
			idx.brands = append(idx.brands, car.Brand)
		}
		idx.byBrand[car.Brand] = append(idx.byBrand[car.Brand], car)

		if bucket := BucketOf(car.Brand); bucket != "" {
			idx.buckets[bucket] = append(idx.buckets[bucket], car)
		}
		idx.buckets[BucketAll] = append(idx.buckets[BucketAll], car)
	}
	slices.Sort(idx.brands)

	idx.categories = append(idx.categories, carCategories...)

	static, err := StaticCategories()
	if err != nil {
		logger.LogError("Static store items unavailable: %v", err)
	}
	for _, sc := range static {
		idx.categories = append(idx.categories, sc)
		for _, item := range sc.Items {
			idx.items[item.ID] = item
			idx.refs[ShortRef(item.ID)] = item.ID
		}
	}

	for i, cat := range idx.categories {
		idx.byKey[cat.Key] = i
	}

	return idx
}

// Catalog returns the catalog the index was built from.
func (idx *Index) Catalog() *Catalog {
	return idx.catalog
}

// ByID finds a car or static item by id or short ref. Cars win when an id exists
// in both.
func (idx *Index) ByID(id string) (Product, bool) {
	if full, ok := idx.refs[id]; ok {
		id = full
	}
	if p, ok := idx.cars[id]; ok {
		return p, true
	}
	p, ok := idx.items[id]
	return p, ok
}

// Car looks up a car by handle or short ref.
func (idx *Index) Car(id string) (Product, error) {
	p, ok := idx.ByID(id)
	if !ok || p.Kind != KindCar {
		return Product{}, &NotFoundError{Kind: "car", ID: id}
	}
	return p, nil
}

// Item looks up a static item by id or short ref.
func (idx *Index) Item(id string) (Product, error) {
	p, ok := idx.ByID(id)
	if !ok || p.Kind != KindItem {
		return Product{}, &NotFoundError{Kind: "item", ID: id}
	}
	return p, nil
}

// Brands returns every brand in alphabetical order.
func (idx *Index) Brands() []string {
	return slices.Clone(idx.brands)
}

// ByBrand returns a brand's cars in catalog order.
func (idx *Index) ByBrand(brand string) []Product {
	return slices.Clone(idx.byBrand[brand])
}

// Bucket returns the cars of a bucket in catalog order.
func (idx *Index) Bucket(name string) []Product {
	return slices.Clone(idx.buckets[name])
}

// Categories returns every menu category in menu order.
func (idx *Index) Categories() []Category {
	return slices.Clone(idx.categories)
}

func (idx *Index) Category(key string) (Category, bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return Category{}, false
	}
	return idx.categories[i], true
}

// CategoryProducts lists what a category shows: its bucket up to the category's
// limit for car categories, the authored items otherwise.
func (idx *Index) CategoryProducts(key string) ([]Product, error) {
	cat, ok := idx.Category(key)
	if !ok {
		return nil, &NotFoundError{Kind: "category", ID: key}
	}
	if !cat.IsCarCategory() {
		return slices.Clone(cat.Items), nil
	}

	cars := idx.buckets[cat.Bucket]
	if cat.Limit > 0 && len(cars) > cat.Limit {
		cars = cars[:cat.Limit]
	}
	return slices.Clone(cars), nil
}

// Stats summarizes the index for health checks and the CLI report.
func (idx *Index) Stats() map[string]int {
	stats := map[string]int{
		"cars":   len(idx.cars),
		"brands": len(idx.brands),
		"items":  len(idx.items),
	}
	for _, rule := range bucketRules {
		stats[rule.name] = len(idx.buckets[rule.name])
	}
	return stats
}
