package geom

import "errors"

var (
	ErrNoIntersection = errors.New("geom: no intersection")
	ErrEmptyLocus     = errors.New("geom: empty point set")
	ErrNegativeRadius = errors.New("geom: negative radius")
)
