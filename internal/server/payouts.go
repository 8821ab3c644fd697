package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/resaleops/stockroom/internal/payout/domain"
)

type recordSaleRequest struct {
	SKU         string `json:"sku" binding:"required"`
	SalePrice   *int64 `json:"sale_price" binding:"required"`
	Platform    string `json:"platform"`
	Buyer       string `json:"buyer"`
	FeeOverride *int64 `json:"fee_override"`
}

func (s *Server) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.payoutSvc.RecordSale(c.Request.Context(), payoutdomain.RecordSaleRequest{
		SKU:         req.SKU,
		SalePrice:   req.SalePrice,
		Platform:    req.Platform,
		Buyer:       req.Buyer,
		FeeOverride: req.FeeOverride,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteSaleRequest struct {
	SalePrice       int64  `json:"sale_price"`
	Platform        string `json:"platform"`
	SplitPercentage *int   `json:"split_percentage"`
}

func (s *Server) QuoteSale(c *gin.Context) {
	var req quoteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	breakdown, err := s.payoutSvc.Quote(c.Request.Context(), payoutdomain.QuoteRequest{
		SalePrice:       req.SalePrice,
		Platform:        req.Platform,
		SplitPercentage: req.SplitPercentage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (s *Server) GetPendingPayout(c *gin.Context) {
	pending, err := s.payoutSvc.Pending(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (s *Server) MarkPayoutPaid(c *gin.Context) {
	result, err := s.payoutSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListPayoutReceipts(c *gin.Context) {
	receipts, err := s.payoutSvc.Receipts(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (s *Server) ListPlatforms(c *gin.Context) {
	cfg := s.catalog.Get()
	platforms := make([]gin.H, 0, len(cfg.PlatformFees))
	for _, name := range cfg.Platforms() {
		fee, _ := cfg.FeeFor(name)
		platforms = append(platforms, gin.H{
			"name":       name,
			"percentage": fee.Percentage,
			"flat_fee":   fee.FlatFee,
		})
	}
	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}
