package gomp

import "github.com/jabolina/gomp/pkg/gomp/types"

// Error, Kind and Subkind are re-exported so callers never need to import
// the internal types package directly.
type (
	Error   = types.Error
	Kind    = types.Kind
	Subkind = types.Subkind
)

const (
	KindAlreadyInitialized   = types.KindAlreadyInitialized
	KindNotInitialized       = types.KindNotInitialized
	KindInitializationFailed = types.KindInitializationFailed
	KindFinalizationFailed   = types.KindFinalizationFailed
	KindInvalidCommunicator  = types.KindInvalidCommunicator
	KindInvalidRank          = types.KindInvalidRank
	KindInvalidTag           = types.KindInvalidTag
	KindInvalidDatatype      = types.KindInvalidDatatype
	KindCommunication        = types.KindCommunication
	KindConnection           = types.KindConnection
	KindProcessSpawnFailed   = types.KindProcessSpawnFailed
	KindOperationFailed      = types.KindOperationFailed

	SubkindTruncation       = types.SubkindTruncation
	SubkindTimeout          = types.SubkindTimeout
	SubkindTransportFailure = types.SubkindTransportFailure
)
