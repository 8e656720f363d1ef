// Package errors provides the sentinel errors of the indexer.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrStoreNotFound = errors.New("store not found")

// ErrUnsupportedProduct is returned for products the document mapper does not handle (products with variants).
var ErrUnsupportedProduct = errors.New("unsupported product")

// ErrCycleDetected is returned when a category parent chain loops back on itself.
var ErrCycleDetected = errors.New("category cycle detected")

// ErrMissingRequiredField is returned when a source record lacks its identity or another mandatory value.
var ErrMissingRequiredField = errors.New("missing required field")

var ErrInvalidPrice = errors.New("invalid price")
var ErrEmptySlug = errors.New("empty slug")
