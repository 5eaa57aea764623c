package catalog

// fallbackCars is served when the CSV export cannot be loaded.
var fallbackCars = []Product{
	{ID: "bugatti-chiron", Kind: KindCar, Name: "CSR2 Bugatti Chiron", Brand: "Bugatti", Price: FixedFloat(15), Description: "Ultimate hypercar", Image: "csr2-car-bugatti.webp", Vendor: defaultVendor},
	{ID: "mclaren-720s", Kind: KindCar, Name: "CSR2 McLaren 720S", Brand: "McLaren", Price: FixedFloat(12), Description: "British supercar", Image: "csr2-car-mclaren.webp", Vendor: defaultVendor},
	{ID: "lamborghini-huracan", Kind: KindCar, Name: "CSR2 Lamborghini Huracán", Brand: "Lamborghini", Price: FixedFloat(14), Description: "Italian beast", Image: "csr2-car-lambo.webp", Vendor: defaultVendor},
}

// Fallback returns a fresh copy of the built-in catalog.
func Fallback() *Catalog {
	cars := make([]Product, len(fallbackCars))
	copy(cars, fallbackCars)
	return &Catalog{Cars: cars}
}
