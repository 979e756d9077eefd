package kickscrew

//
// ────────────────────────────────────────────────
//   KICKSCREW → CANONICAL  : Best Price Response
// ────────────────────────────────────────────────
//

// BestPriceResponse represents the KicksCrew best-price lookup (via RapidAPI).
// GET /product/bestprice?name={name}&size={size}
type BestPriceResponse struct {
	ModelNo     string  `json:"model_no"`
	Title       string  `json:"title"`
	Size        string  `json:"size"`
	LowestPrice float64 `json:"lowest_price"`
	Currency    string  `json:"currency"`
	InStock     bool    `json:"in_stock"`
}

// ErrorResponse represents an error payload from the RapidAPI gateway.
type ErrorResponse struct {
	Message string `json:"message"`
}
