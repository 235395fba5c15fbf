package utils

import (
	"math"
	"strconv"

	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	LastPage int   `json:"last_page"`
}

// ParsePage reads ?page= and ?limit= and clamps them to sane values.
func ParsePage(c *fiber.Ctx) repository.Page {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return repository.Page{Number: page, Size: limit}
}

func NewPageMeta(page repository.Page, total int64) PageMeta {
	return PageMeta{
		Total:    total,
		Page:     page.Number,
		Limit:    page.Size,
		LastPage: int(math.Ceil(float64(total) / float64(page.Size))),
	}
}

// Paginated is the envelope every list endpoint returns.
func Paginated(c *fiber.Ctx, data any, page repository.Page, total int64) error {
	return c.JSON(fiber.Map{
		"data": data,
		"meta": NewPageMeta(page, total),
	})
}
