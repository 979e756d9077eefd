package stockx

//
// ────────────────────────────────────────────────
//   STOCKX → CANONICAL  : Market Data Response
// ────────────────────────────────────────────────
//

// SearchResponse represents the StockX market-data search response (via RapidAPI).
// GET /market-data/search?query={name}&size={size}
type SearchResponse struct {
	Count    int             `json:"count"`
	Products []ProductResult `json:"products"`
}

// ProductResult is one product hit with its current market snapshot.
type ProductResult struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StyleID   string     `json:"styleId,omitempty"`
	Brand     string     `json:"brand,omitempty"`
	Market    MarketData `json:"market"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

// MarketData holds the live pricing figures for a product/size.
type MarketData struct {
	LowestAsk    float64 `json:"lowestAsk"`
	HighestBid   float64 `json:"highestBid,omitempty"`
	LastSale     float64 `json:"lastSale,omitempty"`
	SalesLast72h int     `json:"salesLast72Hours,omitempty"`
}

// ErrorResponse represents an error payload from the RapidAPI gateway.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
