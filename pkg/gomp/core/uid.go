package core

import "github.com/rs/xid"

// GenerateUID returns a short, sortable, globally unique identifier used
// for log correlation. The teacher repo called into a helper package
// (helper.GenerateUID) whose source was not present in the retrieved
// pack, so this is a from-scratch implementation over a real ID library
// rather than a guess at the teacher's exact output format.
func GenerateUID() string {
	return xid.New().String()
}
