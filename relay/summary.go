package relay

import (
	"encoding/json"
	"strconv"

	"github.com/ysmood/gson"
)

// Summary is a flat view of the fields google-maps-scraper usually emits.
// Records are opaque; anything missing is left empty.
type Summary struct {
	Title       string
	Category    string
	Address     string
	Rating      string
	ReviewCount string
	Phone       string
	Website     string
}

// Summarize extracts a Summary from one record. Non-object records yield a
// Summary whose Title is the compact JSON text.
func Summarize(rec json.RawMessage) Summary {
	j := gson.NewFrom(string(rec))
	if _, isObj := j.Val().(map[string]interface{}); !isObj {
		return Summary{Title: j.JSON("", "")}
	}

	return Summary{
		Title:       str(j, "title"),
		Category:    str(j, "category"),
		Address:     str(j, "address"),
		Rating:      num(j, "review_rating"),
		ReviewCount: num(j, "review_count"),
		Phone:       str(j, "phone"),
		Website:     str(j, "web_site"),
	}
}

func str(j gson.JSON, key string) string {
	if !j.Has(key) {
		return ""
	}
	v := j.Get(key)
	if v.Nil() {
		return ""
	}
	return v.Str()
}

func num(j gson.JSON, key string) string {
	if !j.Has(key) {
		return ""
	}
	v := j.Get(key)
	switch v.Val().(type) {
	case float64, json.Number:
		f := v.Num()
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case string:
		return v.Str()
	default:
		return ""
	}
}

// Pretty renders a record as indented JSON for the tree view.
func Pretty(rec json.RawMessage) string {
	return gson.NewFrom(string(rec)).JSON("", "  ")
}
