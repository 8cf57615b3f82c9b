// Package services defines the business logic for the product catalogue.
// Services validate input, call the store and the query pipeline, and return
// *apperr.Error values for predictable failures so the HTTP layer can render
// them without inspecting store internals.
package services

import (
	"github.com/pkg/errors"

	"github.com/tbourn/go-products-api/internal/apperr"
	"github.com/tbourn/go-products-api/internal/repo"
)

// MsgProductNotFound is the message returned when an id does not exist.
const MsgProductNotFound = "Product not found"

// Validation messages, in the order the rules are checked.
const (
	MsgNameRequired        = "name is required and must be a non-empty string"
	MsgDescriptionRequired = "description is required and must be a string"
	MsgPriceRequired       = "price is required and must be a number"
	MsgPriceNumeric        = "price must be numeric"
	MsgCategoryRequired    = "category is required and must be a string"
	MsgInStockBoolean      = "inStock must be boolean"
)

// storeErr translates a store failure: missing ids become a 404 app error,
// anything else is wrapped with op for context and surfaces as a 500.
func storeErr(err error, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(MsgProductNotFound)
	}
	return errors.Wrap(err, op)
}
