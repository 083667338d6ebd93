package database

import "errors"

var (
	// ErrKeyExists is returned when an attempt is made to create
	// a new mapping with a key that already exists.
	ErrKeyExists = errors.New("key exists")
	// ErrMappingNotFound is returned when no mapping with the given key
	// exists, or when resolution hits a deactivated mapping.
	ErrMappingNotFound = errors.New("mapping not found")
)
