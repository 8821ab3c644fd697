package server

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/pkg/db/pagination"
)

const exportPageSize = 250

// ExportItems streams the full item ledger as CSV (default) or JSON. The
// export walks the same cursor pagination the search endpoint uses, so it
// stays bounded in memory for large inventories.
func (s *Server) ExportItems(c *gin.Context) {
	items, err := s.collectItems(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "json":
		c.JSON(http.StatusOK, gin.H{"items": items})
	case "csv":
		s.writeCSV(c, items)
	default:
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be csv or json"))
	}
}

func (s *Server) collectItems(c *gin.Context) ([]itemdomain.Item, error) {
	var items []itemdomain.Item
	req := itemdomain.SearchRequest{
		Pagination:     pagination.Pagination{PageSize: exportPageSize},
		IncludeDeleted: c.Query("include_deleted") == "true",
	}
	for {
		resp, err := s.itemSvc.Search(c.Request.Context(), req)
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)
		if resp.PageInfo == nil || !resp.PageInfo.HasMore {
			return items, nil
		}
		req.PageToken = resp.PageInfo.NextPageToken
	}
}

func (s *Server) writeCSV(c *gin.Context, items []itemdomain.Item) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="items.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"sku", "brand", "model", "size", "color", "condition", "box_status",
		"status", "current_price", "purchase_price", "ownership_type",
		"consigner_id", "split_percentage", "sold_price", "sold_fee",
		"sold_platform", "sold_date", "payout_paid", "notes", "created_at",
	})
	for _, item := range items {
		_ = w.Write([]string{
			item.SKU,
			item.Brand,
			item.Model,
			item.Size,
			item.Color,
			string(item.Condition),
			string(item.BoxStatus),
			string(item.Status),
			strconv.FormatInt(item.CurrentPrice, 10),
			strconv.FormatInt(item.PurchasePrice, 10),
			string(item.OwnershipType),
			formatID(item.ConsignerID),
			formatIntPtr(item.SplitPercentage),
			formatInt64Ptr(item.SoldPrice),
			formatInt64Ptr(item.SoldFee),
			item.SoldPlatform,
			formatTimePtr(item.SoldDate),
			strconv.FormatBool(item.PayoutPaid),
			item.Notes,
			item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
}

func formatID(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
