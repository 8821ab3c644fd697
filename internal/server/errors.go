package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	payoutdomain "github.com/resaleops/stockroom/internal/payout/domain"
	"github.com/resaleops/stockroom/internal/sku"
	"github.com/resaleops/stockroom/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var ambiguous *consignerdomain.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		candidates := make([]map[string]any, 0, len(ambiguous.Candidates))
		for _, candidate := range ambiguous.Candidates {
			candidates = append(candidates, map[string]any{
				"id":    candidate.ID.String(),
				"name":  candidate.Name,
				"phone": candidate.Phone,
			})
		}
		return http.StatusConflict, errorPayload{
			Type:    "ambiguous_match",
			Message: ambiguous.Error(),
			Details: map[string]any{"candidates": candidates},
		}
	}

	var transition *itemdomain.InvalidTransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: transition.Error(),
			Details: map[string]any{
				"sku":  transition.SKU,
				"from": string(transition.From),
				"to":   string(transition.To),
			},
		}
	}

	var unknownBrand *sku.UnknownBrandError
	if errors.As(err, &unknownBrand) {
		return http.StatusBadRequest, errorPayload{
			Type:    "unknown_brand",
			Message: unknownBrand.Error(),
			Details: map[string]any{
				"brand":            unknownBrand.Brand,
				"suggested_prefix": unknownBrand.SuggestedPrefix,
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case db.IsUnavailable(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "storage unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, locationdomain.ErrInvalidCode),
		errors.Is(err, locationdomain.ErrInvalidType),
		errors.Is(err, locationdomain.ErrInactive),
		errors.Is(err, consignerdomain.ErrInvalidID),
		errors.Is(err, consignerdomain.ErrInvalidName),
		errors.Is(err, consignerdomain.ErrInvalidPhone),
		errors.Is(err, consignerdomain.ErrInvalidEmail),
		errors.Is(err, consignerdomain.ErrInvalidSplit),
		errors.Is(err, consignerdomain.ErrPhoneRequired),
		errors.Is(err, itemdomain.ErrInvalidBrand),
		errors.Is(err, itemdomain.ErrInvalidModel),
		errors.Is(err, itemdomain.ErrInvalidCondition),
		errors.Is(err, itemdomain.ErrInvalidBoxStatus),
		errors.Is(err, itemdomain.ErrInvalidPrice),
		errors.Is(err, itemdomain.ErrInvalidStatus),
		errors.Is(err, itemdomain.ErrInvalidOwnership),
		errors.Is(err, itemdomain.ErrInvalidSplit),
		errors.Is(err, itemdomain.ErrConsignerRequired),
		errors.Is(err, itemdomain.ErrConsignerForbidden),
		errors.Is(err, itemdomain.ErrSoldPriceRequired),
		errors.Is(err, itemdomain.ErrInvalidFee),
		errors.Is(err, itemdomain.ErrUnknownPlatform),
		errors.Is(err, itemdomain.ErrReasonRequired),
		errors.Is(err, payoutdomain.ErrInvalidSalePrice),
		errors.Is(err, payoutdomain.ErrInvalidSplit),
		errors.Is(err, payoutdomain.ErrNotConsignment),
		errors.Is(err, sku.ErrInvalidFormat):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, locationdomain.ErrDuplicateCode),
		errors.Is(err, itemdomain.ErrAlreadySold),
		errors.Is(err, itemdomain.ErrPayoutAlreadyPaid),
		errors.Is(err, itemdomain.ErrVariantBaseDeleted),
		errors.Is(err, sku.ErrPrefixExhausted),
		db.IsDuplicateKeyErr(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, itemdomain.ErrNotFound),
		errors.Is(err, locationdomain.ErrNotFound),
		errors.Is(err, consignerdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	default:
		return "client_error", payload.Type
	}
}
