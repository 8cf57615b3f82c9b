package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tbourn/go-products-api/internal/apperr"
	"github.com/tbourn/go-products-api/internal/domain"
)

// ProductPayload is a create/replace request body. Fields are kept as raw
// JSON so validation can tell an absent field from null and from a value of
// the wrong JSON type.
type ProductPayload struct {
	Name        json.RawMessage `json:"name" swaggertype:"string" example:"Pen"`
	Description json.RawMessage `json:"description" swaggertype:"string" example:"Blue ink"`
	Price       json.RawMessage `json:"price" swaggertype:"number" example:"1.5"`
	Category    json.RawMessage `json:"category" swaggertype:"string" example:"Stationery"`
	InStock     json.RawMessage `json:"inStock,omitempty" swaggertype:"boolean" example:"true"`
}

// ValidateProduct checks p and returns the normalized fields, or the first
// failing rule as a 400 *apperr.Error. Rules run in this order: name,
// description, price, category, inStock.
//
// price may be a JSON number or a numeric string. inStock is optional
// (absent means false) and accepts a boolean, a number (non-zero is true)
// or a string (non-empty is true, so "false" is true). Strings are stored
// as sent; only emptiness checks trim.
func ValidateProduct(p ProductPayload) (domain.ProductFields, error) {
	var f domain.ProductFields

	name, ok := jsonString(p.Name)
	if !ok || strings.TrimSpace(name) == "" {
		return f, apperr.BadRequest(MsgNameRequired)
	}
	f.Name = name

	if f.Description, ok = jsonString(p.Description); !ok {
		return f, apperr.BadRequest(MsgDescriptionRequired)
	}

	price, err := parsePrice(p.Price)
	if err != nil {
		return f, err
	}
	f.Price = price

	category, ok := jsonString(p.Category)
	if !ok || strings.TrimSpace(category) == "" {
		return f, apperr.BadRequest(MsgCategoryRequired)
	}
	f.Category = category

	if f.InStock, err = parseInStock(p.InStock); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		return 0, apperr.BadRequest(MsgPriceRequired)
	case raw[0] == '"':
		s, _ := jsonString(raw)
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, apperr.BadRequest(MsgPriceNumeric)
		}
		return v, nil
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, apperr.BadRequest(MsgPriceNumeric)
		}
		return v, nil
	default:
		return 0, apperr.BadRequest(MsgPriceRequired)
	}
}

func parseInStock(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false, nil
	}
	switch c := raw[0]; {
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
	case c == '"':
		s, _ := jsonString(raw)
		return s != "", nil
	case c == '-' || (c >= '0' && c <= '9'):
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			return v != 0, nil
		}
	}
	return false, apperr.BadRequest(MsgInStockBoolean)
}

// jsonString decodes raw when it holds a JSON string.
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
