package item

import (
	"strconv"
	"strings"
	"time"
)

// DefaultBuyLimit applies to every item missing from the buy limits table
const DefaultBuyLimit = 10000

// Entry is one name/identifier pair from the GE ID feed
type Entry struct {
	Name string
	ID   int
}

// Record is the metadata persisted as <ID>.json
type Record struct {
	Name       string `json:"name"`
	ID         int    `json:"ge_id"`
	BuyLimit   int    `json:"buy_limit"`
	LastUpdate int64  `json:"last_update"`
}

// NewRecord builds the record for e. The limit is looked up by lower-cased name.
func NewRecord(e Entry, limits map[string]int, defaultLimit int, now time.Time) Record {
	limit, ok := limits[strings.ToLower(e.Name)]
	if !ok {
		limit = defaultLimit
	}
	return Record{
		Name:       e.Name,
		ID:         e.ID,
		BuyLimit:   limit,
		LastUpdate: now.Unix(),
	}
}

// ParseID parses a decimal identifier. Surrounding whitespace is ignored and a
// fractional part of zero ("30335.0") is accepted.
func ParseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		if id < 1 {
			return 0, ErrInvalidID
		}
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || f < 1 {
		return 0, ErrInvalidID
	}
	return int(f), nil
}
