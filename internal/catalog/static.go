package catalog

import (
	_ "embed"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed staticitems.yaml
var staticItemsYAML []byte

type staticFile struct {
	Categories []staticCategory `yaml:"categories"`
}

type staticCategory struct {
	Key   string       `yaml:"key"`
	Name  string       `yaml:"name"`
	Emoji string       `yaml:"emoji"`
	Items []staticItem `yaml:"items"`
}

type staticItem struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Price       staticPrice `yaml:"price"`
	Description string      `yaml:"description"`
	Image       string      `yaml:"image"`
}

// staticPrice decodes numeric scalars as fixed prices and anything else as a
// contact note.
type staticPrice struct {
	Price
}

func (p *staticPrice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: price must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		amount, err := decimal.NewFromString(node.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d: price", node.Line)
		}
		p.Price = Fixed(amount)
	default:
		p.Price = ContactRequired(node.Value)
	}
	return nil
}

var (
	staticOnce       sync.Once
	staticCategories []Category
	staticErr        error
)

// StaticCategories returns the non-car menu categories in menu order. The table
// is parsed once; callers must not modify the returned slices.
func StaticCategories() ([]Category, error) {
	staticOnce.Do(func() {
		staticCategories, staticErr = parseStatic(staticItemsYAML)
	})
	return staticCategories, staticErr
}

func parseStatic(data []byte) ([]Category, error) {
	var file staticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse static items")
	}

	seen := make(map[string]string)
	categories := make([]Category, 0, len(file.Categories))
	for _, sc := range file.Categories {
		c := Category{Key: sc.Key, Name: sc.Name, Emoji: sc.Emoji}
		for _, it := range sc.Items {
			if prev, dup := seen[it.ID]; dup {
				return nil, errors.Errorf("static item %q listed in %s and %s", it.ID, prev, sc.Key)
			}
			seen[it.ID] = sc.Key
			c.Items = append(c.Items, Product{
				ID:          it.ID,
				Kind:        KindItem,
				Name:        it.Name,
				Description: it.Description,
				Image:       it.Image,
				Price:       it.Price.Price,
				Category:    sc.Key,
			})
		}
		categories = append(categories, c)
	}
	return categories, nil
}
