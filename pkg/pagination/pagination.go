package pagination

import "fmt"

const (
	// DefaultLimit is the catalog page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers or services. Page is
// 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to at least 1 and limit into [1, MaxLimit], using
// defaultLimit when no limit was supplied.
func (p Params) Normalize(defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit, defaultLimit)
	return p
}

// Validate rejects a limit above MaxLimit. Callers report it instead of
// serving a shorter page than they asked for.
func (p Params) Validate() error {
	if p.Limit > MaxLimit {
		return fmt.Errorf("limit cannot exceed %d", MaxLimit)
	}
	return nil
}

// Offset is the number of rows skipped before this page.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages reports how many pages of p.Limit rows cover total.
func (p Params) TotalPages(total int64) int64 {
	if p.Limit < 1 || total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit, defaultLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
