package gomp

import "github.com/jabolina/gomp/pkg/gomp/types"

// Status is re-exported from types.
type Status = types.Status

// AnySource and AnyTag are the receive-side wildcards.
const (
	AnySource = types.AnySource
	AnyTag    = types.AnyTag
)
