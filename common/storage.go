package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// GetIntOrZero returns an integer value from contract storage or zero if the
// key has never been written. Ledger entries are never deleted, so a missing
// key and a zero balance are the same thing.
func GetIntOrZero(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}

// BytesEqual compares two slices of bytes by wrapped VM method.
func BytesEqual(a []byte, b []byte) bool {
	return util.Equals(string(a), string(b))
}
