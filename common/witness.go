package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

var (
	// ErrAdminWitnessFailed appears when the method must be called by
	// the vault administrator but was not.
	ErrAdminWitnessFailed = "administrator witness check failed"
	// ErrOwnerWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrOwnerWitnessFailed = "owner witness check failed"
)

// CheckOwnerWitness checks that the carrier transaction is signed by the
// given asset owner. A smart contract acting on its own assets cannot
// provide a witness, so a direct call from the owner contract counts too.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner interop.Hash160) {
	if len(owner) == interop.Hash160Len {
		if runtime.CheckWitness(owner) {
			return
		}

		callingScriptHash := runtime.GetCallingScriptHash()
		if BytesEqual(callingScriptHash, owner) {
			return
		}
	}

	panic(ErrOwnerWitnessFailed)
}

// CheckAdminWitness checks witness of the current vault administrator.
// It panics with ErrAdminWitnessFailed message on fail.
func CheckAdminWitness(admin interop.Hash160) {
	if !runtime.CheckWitness(admin) {
		panic(ErrAdminWitnessFailed)
	}
}
