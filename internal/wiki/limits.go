package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BuyLimits maps a lower-cased item name to its buy limit
type BuyLimits map[string]int

// FetchBuyLimits downloads the buying limits article and parses its table.
// A page without a matching table yields an empty map, not an error.
func (c *Client) FetchBuyLimits(ctx context.Context) (BuyLimits, error) {
	body, err := c.getOK(ctx, c.limitsURL, c.feedTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buy limits: %w", err)
	}
	return ParseBuyLimits(bytes.NewReader(body), c.defaultLimit, c.logger)
}

// ParseBuyLimits reads the first table whose first header cell contains "Item"
// and second contains "Limit". Limits that are not plain digits once thousands
// separators are removed resolve to defaultLimit.
func ParseBuyLimits(r io.Reader, defaultLimit int, logger *slog.Logger) (BuyLimits, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse limits page: %w", err)
	}

	limits := BuyLimits{}

	var rows *goquery.Selection
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		tr := table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
		header := cellTexts(tr.First())
		if len(header) >= 2 && strings.Contains(header[0], "Item") && strings.Contains(header[1], "Limit") {
			rows = tr.Slice(1, goquery.ToEnd)
			return false
		}
		return true
	})

	if rows == nil {
		logger.Warn("could not find buy limits table, using defaults for all items")
		return limits, nil
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if row.ChildrenFiltered("td").Length() == 0 {
			return
		}
		cells := cellTexts(row)
		if len(cells) < 2 {
			return
		}

		name := strings.ToLower(cells[0])
		if name == "" {
			logger.Warn("skipping buy limit row without item name", "row", i+1)
			return
		}

		limit := defaultLimit
		raw := strings.TrimSpace(strings.ReplaceAll(cells[1], ",", ""))
		if isDigits(raw) {
			n, err := strconv.Atoi(raw)
			if err != nil {
				logger.Warn("skipping invalid limit", "name", name, "limit", cells[1], "error", err)
				return
			}
			limit = n
		}
		limits[name] = limit
	})

	logger.Info("parsed buy limits", "count", len(limits))
	return limits, nil
}

func cellTexts(row *goquery.Selection) []string {
	return row.ChildrenFiltered("th, td").Map(func(_ int, cell *goquery.Selection) string {
		return strings.TrimSpace(cell.Text())
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
