package catalog

import (
	"fmt"
	"strings"

	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Feed is the supplier price list document. Suppliers publish it as YAML,
// either uploaded directly or fetched from a URL they control.
type Feed struct {
	Shop       string         `yaml:"shop"`
	Categories []FeedCategory `yaml:"categories"`
	Goods      []FeedGood     `yaml:"goods"`
}

// FeedCategory pairs the supplier-assigned category id with its display name.
type FeedCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// FeedGood is one listing row in the price list.
type FeedGood struct {
	ID         int64                `yaml:"id"`
	Category   int64                `yaml:"category"`
	Model      string               `yaml:"model"`
	Name       string               `yaml:"name"`
	Price      Money                `yaml:"price"`
	PriceRRC   Money                `yaml:"price_rrc"`
	Quantity   int                  `yaml:"quantity"`
	Parameters map[string]ParamText `yaml:"parameters"`
}

// Money decodes YAML scalars into exact decimals. Feeds carry plain numbers,
// so float round-tripping is not acceptable for prices.
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar price, got %v", node.Kind)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", node.Value, err)
	}
	m.Decimal = d
	return nil
}

// ParamText accepts any scalar parameter value and keeps its textual form.
type ParamText string

func (p *ParamText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar parameter value, got %v", node.Kind)
	}
	*p = ParamText(node.Value)
	return nil
}

// ParseFeed decodes and validates a YAML price list.
func ParseFeed(data []byte) (*Feed, error) {
	var feed Feed
	if err := yaml.Unmarshal(data, &feed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse feed yaml")
	}
	if err := feed.Validate(); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Validate checks structural invariants before any database work starts.
func (f *Feed) Validate() error {
	if strings.TrimSpace(f.Shop) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "feed is missing shop name")
	}

	categoryIDs := make(map[int64]struct{}, len(f.Categories))
	for i, category := range f.Categories {
		if category.ID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("category %d has invalid id %d", i, category.ID))
		}
		if strings.TrimSpace(category.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("category %d is missing a name", category.ID))
		}
		if _, dup := categoryIDs[category.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("category %d appears more than once", category.ID))
		}
		categoryIDs[category.ID] = struct{}{}
	}

	goodIDs := make(map[int64]struct{}, len(f.Goods))
	for i, good := range f.Goods {
		if good.ID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d has invalid id %d", i, good.ID))
		}
		if _, dup := goodIDs[good.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d appears more than once", good.ID))
		}
		goodIDs[good.ID] = struct{}{}

		if _, ok := categoryIDs[good.Category]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d references unknown category %d", good.ID, good.Category))
		}
		if strings.TrimSpace(good.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d is missing a name", good.ID))
		}
		if good.Price.IsNegative() || good.PriceRRC.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d has a negative price", good.ID))
		}
		if good.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("good %d has negative quantity", good.ID))
		}
		for name := range good.Parameters {
			if strings.TrimSpace(name) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("good %d has a parameter with an empty name", good.ID))
			}
		}
	}

	return nil
}
