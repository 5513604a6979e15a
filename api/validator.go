package api

import "github.com/geojot/geojot/api/validator"

// Aliases so handlers can speak about validation without importing the
// wrapper package everywhere.
type (
	Validator       = validator.Validator
	ValidationError = validator.ValidationError
)
