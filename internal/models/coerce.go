package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The admin forms historically posted numeric fields as free text, and the
// old client coerced anything non-numeric to zero instead of rejecting it.
// LaxInt and LaxFloat keep that contract at the JSON boundary.

// LaxInt decodes from a JSON number, numeric string, null, or garbage;
// everything non-numeric becomes 0.
type LaxInt int

func (n *LaxInt) UnmarshalJSON(data []byte) error {
	*n = LaxInt(laxParse(data, func(s string) (float64, bool) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return f, true
		}
		return float64(v), true
	}))
	return nil
}

func (n LaxInt) Int() int { return int(n) }

// LaxFloat is the decimal counterpart of LaxInt.
type LaxFloat float64

func (n *LaxFloat) UnmarshalJSON(data []byte) error {
	*n = LaxFloat(laxParse(data, func(s string) (float64, bool) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}))
	return nil
}

func (n LaxFloat) Float64() float64 { return float64(n) }

func laxParse(data []byte, parse func(string) (float64, bool)) float64 {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return 0
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return 0
		}
	}

	v, ok := parse(raw)
	if !ok {
		return 0
	}
	return v
}
