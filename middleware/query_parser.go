package middleware

import (
	"github.com/gofiber/fiber/v2"

	"bplcommander/utils"
)

const queryContextKey = "queryContext"

// ParseQuery extracts pagination, filters, include list and flags from the
// query string into a QueryContext. Parsing never fails; out-of-range
// pagination is rejected later by ValidatePagination.
func ParseQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		qc := utils.ParseQueryContext(func(key string) string {
			return c.Query(key)
		})
		c.Locals(queryContextKey, qc)
		return c.Next()
	}
}

// QueryFrom returns the parsed query context, or defaults when ParseQuery did
// not run on this route.
func QueryFrom(c *fiber.Ctx) *utils.QueryContext {
	if qc, ok := c.Locals(queryContextKey).(*utils.QueryContext); ok {
		return qc
	}
	return utils.ParseQueryContext(func(string) string { return "" })
}

// ValidatePagination rejects page and limit values outside their valid range.
func ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		qc := QueryFrom(c)
		if qc.Pagination.Page < 1 {
			return utils.NewValidationError("Page number must be greater than 0")
		}
		if qc.Pagination.Limit < 1 || qc.Pagination.Limit > utils.MaxLimit {
			return utils.NewValidationError("Limit must be between 1 and 100")
		}
		return c.Next()
	}
}
