package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores string lists (tags, categories) as JSON, while
// tolerating legacy plain-string data imported from the old backend.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}
	if value == nil {
		*a = []string{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = []string{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*a = arr
		return nil
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		if single == "" {
			*a = []string{}
		} else {
			*a = []string{single}
		}
		return nil
	}

	*a = []string{raw}
	return nil
}

// ImageRefList stores an ordered list of image references as JSON. Legacy
// records that held bare URL strings scan into refs with an empty Path.
type ImageRefList []ImageRef

func (l ImageRefList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]ImageRef(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageRefList) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("models.ImageRefList: Scan on nil pointer")
	}
	if value == nil {
		*l = ImageRefList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.ImageRefList: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*l = ImageRefList{}
		return nil
	}

	var refs []ImageRef
	if err := json.Unmarshal([]byte(raw), &refs); err == nil {
		*l = refs
		return nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err == nil {
		out := make(ImageRefList, 0, len(urls))
		for _, u := range urls {
			if u == "" {
				continue
			}
			out = append(out, ImageRef{URL: u})
		}
		*l = out
		return nil
	}

	return fmt.Errorf("models.ImageRefList: cannot decode %q", raw)
}

// URLs returns just the retrieval URLs, in order.
func (l ImageRefList) URLs() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.URL)
	}
	return out
}
