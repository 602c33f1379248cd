// Package token is a minimal NEP-17 token with an open mint method, only
// usable as a deposit target in vault tests.
package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const circulation = "TestTokenSupply"

func Symbol() string {
	return "TOK"
}

func Decimals() int {
	return 8
}

func TotalSupply() int {
	return getIntOrZero(storage.GetReadOnlyContext(), []byte(circulation))
}

func BalanceOf(holder interop.Hash160) int {
	return getIntOrZero(storage.GetReadOnlyContext(), holder)
}

// Mint credits the given account out of thin air, no authorization.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	storage.Put(ctx, to, getIntOrZero(ctx, to)+amount)
	storage.Put(ctx, circulation, getIntOrZero(ctx, []byte(circulation))+amount)
	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
}

func Transfer(from interop.Hash160, to interop.Hash160, amount int, data interface{}) bool {
	ctx := storage.GetContext()

	if amount < 0 {
		panic("transfer: negative amount")
	}
	if len(to) != interop.Hash160Len || !isUsableAddress(from) {
		return false
	}

	balance := getIntOrZero(ctx, from)
	if balance < amount {
		return false
	}

	storage.Put(ctx, from, balance-amount)
	storage.Put(ctx, to, getIntOrZero(ctx, to)+amount)

	runtime.Notify("Transfer", from, to, amount)
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}
		if string(runtime.GetCallingScriptHash()) == string(addr) {
			return true
		}
	}

	return false
}

func getIntOrZero(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}
