package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
)

type createItemRequest struct {
	Brand           string         `json:"brand" binding:"required"`
	Model           string         `json:"model" binding:"required"`
	Size            string         `json:"size"`
	Color           string         `json:"color"`
	Condition       string         `json:"condition" binding:"required"`
	BoxStatus       string         `json:"box_status" binding:"required"`
	CurrentPrice    int64          `json:"current_price"`
	PurchasePrice   int64          `json:"purchase_price"`
	Location        string         `json:"location"`
	OwnershipType   string         `json:"ownership_type"`
	ConsignerID     string         `json:"consigner_id"`
	SplitPercentage *int           `json:"split_percentage"`
	Notes           string         `json:"notes"`
	Attributes      map[string]any `json:"attributes"`
}

func (s *Server) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Create(c.Request.Context(), itemdomain.CreateItemRequest{
		Brand:           req.Brand,
		Model:           req.Model,
		Size:            req.Size,
		Color:           req.Color,
		Condition:       req.Condition,
		BoxStatus:       req.BoxStatus,
		CurrentPrice:    req.CurrentPrice,
		PurchasePrice:   req.PurchasePrice,
		LocationCode:    req.Location,
		OwnershipType:   req.OwnershipType,
		ConsignerID:     req.ConsignerID,
		SplitPercentage: req.SplitPercentage,
		Notes:           req.Notes,
		Attributes:      req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) GetItem(c *gin.Context) {
	item, err := s.itemSvc.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateItemRequest struct {
	Model         *string        `json:"model"`
	Size          *string        `json:"size"`
	Color         *string        `json:"color"`
	Condition     *string        `json:"condition"`
	BoxStatus     *string        `json:"box_status"`
	CurrentPrice  *int64         `json:"current_price"`
	PurchasePrice *int64         `json:"purchase_price"`
	Notes         *string        `json:"notes"`
	Attributes    map[string]any `json:"attributes"`
}

func (s *Server) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Update(c.Request.Context(), itemdomain.UpdateItemRequest{
		SKU:           c.Param("sku"),
		Model:         req.Model,
		Size:          req.Size,
		Color:         req.Color,
		Condition:     req.Condition,
		BoxStatus:     req.BoxStatus,
		CurrentPrice:  req.CurrentPrice,
		PurchasePrice: req.PurchasePrice,
		Notes:         req.Notes,
		Attributes:    req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type transitionItemRequest struct {
	Status       string `json:"status" binding:"required"`
	SoldPrice    *int64 `json:"sold_price"`
	SoldPlatform string `json:"sold_platform"`
	FeeOverride  *int64 `json:"fee_override"`
	Buyer        string `json:"buyer"`
	Reason       string `json:"reason"`
}

func (s *Server) TransitionItemStatus(c *gin.Context) {
	var req transitionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.TransitionStatus(c.Request.Context(), itemdomain.TransitionRequest{
		SKU:          c.Param("sku"),
		NewStatus:    req.Status,
		SoldPrice:    req.SoldPrice,
		SoldPlatform: req.SoldPlatform,
		FeeOverride:  req.FeeOverride,
		Buyer:        req.Buyer,
		Reason:       req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type reopenItemRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (s *Server) ReopenItem(c *gin.Context) {
	var req reopenItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Reopen(c.Request.Context(), itemdomain.ReopenRequest{
		SKU:    c.Param("sku"),
		Reason: req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type moveItemRequest struct {
	Location string `json:"location" binding:"required"`
}

func (s *Server) MoveItem(c *gin.Context) {
	var req moveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Move(c.Request.Context(), itemdomain.MoveRequest{
		SKU:          c.Param("sku"),
		LocationCode: req.Location,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) RoundItemPrice(c *gin.Context) {
	item, err := s.itemSvc.RoundPrice(c.Request.Context(), c.Param("sku"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type createVariantRequest struct {
	Size          string `json:"size"`
	Color         string `json:"color"`
	Condition     string `json:"condition"`
	BoxStatus     string `json:"box_status"`
	CurrentPrice  *int64 `json:"current_price"`
	PurchasePrice *int64 `json:"purchase_price"`
	Location      string `json:"location"`
}

func (s *Server) CreateItemVariant(c *gin.Context) {
	var req createVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.CreateVariant(c.Request.Context(), itemdomain.CreateVariantRequest{
		BaseSKU:       c.Param("sku"),
		Size:          req.Size,
		Color:         req.Color,
		Condition:     req.Condition,
		BoxStatus:     req.BoxStatus,
		CurrentPrice:  req.CurrentPrice,
		PurchasePrice: req.PurchasePrice,
		LocationCode:  req.Location,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) SearchItems(c *gin.Context) {
	var req itemdomain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.itemSvc.Search(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
