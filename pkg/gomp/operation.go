package gomp

import "github.com/jabolina/gomp/pkg/gomp/types"

// Operation is re-exported from types for the same reason Datatype is.
type Operation = types.Operation

var (
	Max        = types.Max
	Min        = types.Min
	Sum        = types.Sum
	Prod       = types.Prod
	LogicalAnd = types.LogicalAnd
	LogicalOr  = types.LogicalOr
	LogicalXor = types.LogicalXor
	BitwiseAnd = types.BitwiseAnd
	BitwiseOr  = types.BitwiseOr
	BitwiseXor = types.BitwiseXor
	MinlocOp   = types.MinLoc
	MaxlocOp   = types.MaxLoc
)
