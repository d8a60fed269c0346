package zone

import "errors"

// Validation errors
var (
	ErrConfigFormat     = errors.New("invalid database format")
	ErrInvalidNamespace = errors.New("invalid namespace")
	ErrRootNamespace    = errors.New("root zone cannot declare a namespace")
	ErrRootRecords      = errors.New("root zone cannot declare records")
)
