package goat

//
// ────────────────────────────────────────────────
//   GOAT → CANONICAL  : Product Variants Response
// ────────────────────────────────────────────────
//

// VariantsResponse represents GOAT's mobile product-variants listing.
// GET /api/v1/product_variants?search={name}
type VariantsResponse struct {
	Variants []Variant `json:"productVariants"`
}

// Variant is one size/condition offer for a product.
type Variant struct {
	ID               string `json:"id"`
	ProductTemplate  string `json:"productTemplateId"`
	Size             string `json:"size"`              // e.g. "10.5"
	Condition        string `json:"shoeCondition"`     // "new_no_defects", "used"
	BoxCondition     string `json:"boxCondition"`      // "good_condition", "no_original_box"
	LowestPriceCents int64  `json:"lowestPriceCents"`  // lowest live ask, minor units
	InstantShipCents int64  `json:"instantShipLowestPriceCents,omitempty"`
}

// ErrorResponse represents an error payload from GOAT.
type ErrorResponse struct {
	Error string `json:"error"`
}
