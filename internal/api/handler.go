package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/decision"
	"github.com/flipscout/pricecheck/internal/fees"
	"github.com/flipscout/pricecheck/internal/market"
)

// CheckService defines the price-check operation used by the handler.
type CheckService interface {
	CheckPrice(ctx context.Context, q market.Query) (market.AggregateResult, error)
}

// Analyzer defines the detailed-margin operation used by the handler.
type Analyzer interface {
	Analyze(gross map[market.Platform]decimal.Decimal, targets []decimal.Decimal, auctionMinutes int) (decision.AdvancedAnalysis, error)
}

// CheckHandler handles HTTP API requests for price-check operations.
type CheckHandler struct {
	logger          *zap.Logger
	service         CheckService
	analyzer        Analyzer
	fees            *fees.Registry
	advancedTargets []decimal.Decimal
}

// NewCheckHandler creates a new CheckHandler.
// advancedTargets are the default ROI multipliers for the analysis endpoint
// when the caller does not supply custom ones.
func NewCheckHandler(logger *zap.Logger, service CheckService, analyzer Analyzer, registry *fees.Registry, advancedTargets []decimal.Decimal) *CheckHandler {
	return &CheckHandler{
		logger:          logger,
		service:         service,
		analyzer:        analyzer,
		fees:            registry,
		advancedTargets: advancedTargets,
	}
}

// CheckPriceHandler handles full multi-platform price checks.
func (h *CheckHandler) CheckPriceHandler(c *fiber.Ctx) error {
	var req CheckPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	condition, err := market.ParseCondition(req.Condition)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	query := market.Query{
		ProductName: req.ProductName,
		Size:        req.Size,
		Condition:   condition,
	}

	result, err := h.service.CheckPrice(c.Context(), query)
	if err != nil {
		h.logger.Warn("api.check_price.rejected",
			zap.String("product", req.ProductName),
			zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(toCheckPriceResponse(result))
}

// PlatformsHandler lists the registered platforms and their fee schedules.
func (h *CheckHandler) PlatformsHandler(c *fiber.Ctx) error {
	platforms := make([]PlatformInfoDTO, 0, h.fees.Len())
	for _, p := range h.fees.Platforms() {
		model, _ := h.fees.Lookup(p)
		platforms = append(platforms, PlatformInfoDTO{
			Platform:     string(p),
			SellerFeePct: model.SellerFeePct,
			ShippingCost: model.ShippingCost,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"platforms": platforms})
}

// AdvancedAnalysisHandler builds a detailed margin report from caller-supplied prices.
func (h *CheckHandler) AdvancedAnalysisHandler(c *fiber.Ctx) error {
	var req AdvancedAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	gross := make(map[market.Platform]decimal.Decimal, len(req.Prices))
	for platform, price := range req.Prices {
		gross[market.Platform(platform)] = price
	}

	targets := req.CustomMultipliers
	if len(targets) == 0 {
		targets = h.advancedTargets
	}

	analysis, err := h.analyzer.Analyze(gross, targets, req.AuctionTimeRemaining)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(toAdvancedAnalysisResponse(analysis))
}

// QuickBidHandler runs the single-platform bid calculation.
func (h *CheckHandler) QuickBidHandler(c *fiber.Ctx) error {
	var req QuickBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	feePct := req.FeePct
	shipping := req.ShippingCost
	if req.Platform != "" {
		model, ok := h.fees.Lookup(market.Platform(req.Platform))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown platform: " + req.Platform})
		}
		feePct = model.SellerFeePct
		shipping = model.ShippingCost
	}

	result, err := decision.QuickBid(decision.QuickBidInput{
		SellingPrice:     req.SellingPrice,
		TargetMultiplier: req.TargetMultiplier,
		FeePct:           feePct,
		ShippingCost:     shipping,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(toQuickBidResponse(result))
}
