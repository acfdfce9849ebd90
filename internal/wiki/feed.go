package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"geitems/internal/item"
)

// reservedKeys are bookkeeping entries of the GE ID module, not items
var reservedKeys = map[string]bool{
	"%LAST_UPDATE%":   true,
	"%LAST_UPDATE_F%": true,
}

// FetchEntries downloads the GE ID feed and returns its items in feed order.
// Any failure here is fatal for the run.
func (c *Client) FetchEntries(ctx context.Context) ([]item.Entry, error) {
	body, err := c.getOK(ctx, c.feedURL, c.feedTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GE IDs: %w", err)
	}

	entries, err := ParseEntries(bytes.NewReader(body), c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GE IDs: %w", err)
	}
	return entries, nil
}

// ParseEntries decodes a JSON object of name -> id, keeping document order.
// Values may be numbers or numeric strings; anything else is skipped.
func ParseEntries(r io.Reader, logger *slog.Logger) ([]item.Entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("feed is not a JSON object")
	}

	var entries []item.Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", name, err)
		}

		if reservedKeys[name] {
			continue
		}

		id, err := parseRawID(raw)
		if err != nil {
			logger.Debug("skipping feed entry", "name", name, "value", string(raw), "error", err)
			continue
		}
		entries = append(entries, item.Entry{Name: name, ID: id})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseRawID(raw json.RawMessage) (int, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return item.ParseID(s)
	}
	return item.ParseID(string(raw))
}
