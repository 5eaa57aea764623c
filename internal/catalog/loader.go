package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storebot/internal/logger"
)

// Column headers of the store's CSV export.
const (
	colHandle    = "Handle"
	colTitle     = "Title"
	colPrice     = "Price / United States"
	colImage     = "Image Src"
	colVendor    = "Vendor"
	colTags      = "Tags"
	colPublished = "Published"
	colColor     = "Option1 Value"
	colSKU       = "Variant SKU"
)

const (
	defaultImage  = "csr2-car-default.webp"
	defaultVendor = "CSR2 MODS STORE"
	brandPrefix   = "CSR2"
	otherBrand    = "Other"
)

// DefaultCarPrice applies when a row has no usable price.
var DefaultCarPrice = decimal.NewFromInt(10)

// LoadFile opens path and parses it with Load. Failures are *LoadError.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return c, nil
}

// LoadOrFallback never fails: when the source cannot be loaded it logs the error and
// returns the built-in catalog with degraded set.
func LoadOrFallback(path string) (c *Catalog, degraded bool) {
	logger.LogInfo("Loading cars database from %s", path)

	c, err := LoadFile(path)
	if err != nil {
		logger.LogError("Failed to load cars database: %v", err)
		logger.LogWarn("Using fallback static car data (%d cars)", len(fallbackCars))
		return Fallback(), true
	}

	logger.LogInfo("Loaded %d unique cars from %d rows", c.Size(), c.Rows)
	return c, false
}

// header maps column names to their position; missing columns read as "".
type header map[string]int

func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Load parses a CSV export into a deduplicated catalog. Rows sharing a handle
// become variants of the first product with that handle.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	names, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Op: "parse", Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &LoadError{Op: "read", Err: errors.Wrap(err, "header row")}
	}

	cols := make(header, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{colHandle, colTitle} {
		if _, ok := cols[required]; !ok {
			return nil, &LoadError{Op: "parse", Err: errors.Errorf("missing %q column", required)}
		}
	}

	c := &Catalog{}
	positions := make(map[string]int)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Op: "read", Err: errors.Wrapf(err, "row %d", c.Rows+1)}
		}
		c.Rows++

		handle := cols.get(record, colHandle)
		title := cols.get(record, colTitle)
		if handle == "" || title == "" {
			continue
		}

		color := cols.get(record, colColor)
		price := parsePrice(cols.get(record, colPrice))

		pos, seen := positions[handle]
		if !seen {
			car := Product{
				ID:          handle,
				Kind:        KindCar,
				Name:        title,
				Brand:       brandFromTitle(title),
				Price:       price,
				Description: "Premium CSR2 car - " + title + ". Get this amazing vehicle added to your garage!",
				Image:       valueOr(cols.get(record, colImage), defaultImage),
				Vendor:      valueOr(cols.get(record, colVendor), defaultVendor),
				Tags:        cols.get(record, colTags),
				Published:   cols.get(record, colPublished) == "TRUE",
			}
			positions[handle] = len(c.Cars)
			c.Cars = append(c.Cars, car)
			pos = positions[handle]
		}

		if color != "" {
			c.Cars[pos].Variants = append(c.Cars[pos].Variants, Variant{
				Color: color,
				Price: price,
				SKU:   cols.get(record, colSKU),
			})
		}
	}

	return c, nil
}

// brandFromTitle reads "CSR2 <Brand> <Model...>"; anything else is "Other".
func brandFromTitle(title string) string {
	parts := strings.Fields(title)
	if len(parts) >= 3 && parts[0] == brandPrefix {
		return parts[1]
	}
	return otherBrand
}

// parsePrice: empty or zero cells get DefaultCarPrice, non-numeric cells become a
// contact price carrying the cell text.
func parsePrice(cell string) Price {
	if cell == "" {
		return Fixed(DefaultCarPrice)
	}
	amount, err := decimal.NewFromString(cell)
	if err != nil {
		return ContactRequired(cell)
	}
	if amount.IsZero() {
		return Fixed(DefaultCarPrice)
	}
	return Fixed(amount)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
