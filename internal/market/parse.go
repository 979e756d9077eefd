package market

import "strings"

// ProductInfo is the parsed breakdown of a free-text product name.
type ProductInfo struct {
	Name  string
	Brand string
	Model string
}

// Known brand prefixes, checked in order. Multi-word brands come before
// their single-word substrings so "new balance" wins over nothing.
var knownBrands = []string{
	"new balance",
	"nike",
	"adidas",
	"jordan",
	"yeezy",
	"puma",
	"vans",
	"converse",
	"asics",
	"reebok",
}

// ParseProduct extracts brand and model from a raw product name.
// Unrecognized brands yield brand "unknown" with the full name as model.
func ParseProduct(name string) ProductInfo {
	lowered := strings.ToLower(strings.TrimSpace(name))

	brand := "unknown"
	model := lowered
	for _, b := range knownBrands {
		if strings.Contains(lowered, b) {
			brand = b
			model = strings.TrimSpace(strings.ReplaceAll(lowered, b, ""))
			break
		}
	}

	return ProductInfo{
		Name:  strings.TrimSpace(name),
		Brand: brand,
		Model: model,
	}
}
