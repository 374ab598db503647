package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/domain"
)

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, domain.NewError(domain.KindValidation, "invalid %s", name)
	}
	return uint(v), nil
}

// intQuery parses an optional numeric query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// uintQueryPtr parses an optional numeric query parameter into a pointer.
func uintQueryPtr(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

// uintListQuery parses a repeated numeric query parameter.
func uintListQuery(c *gin.Context, name string) []uint {
	var out []uint
	for _, raw := range c.QueryArray(name) {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
			out = append(out, uint(v))
		}
	}
	return out
}

func paging(c *gin.Context) (int, int) {
	return intQuery(c, "page", 1), intQuery(c, "page_size", 20)
}
