package wrapgas

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/vault-contract/common"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	symbol      = "wGAS"
	decimals    = 8
	circulation = "WrappedGAS"
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("wrapped GAS contract initialized")
}

// Symbol is a NEP-17 standard method that returns the wrapped GAS token
// symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns the precision of
// wrapped GAS balances. It matches the native GAS precision, the token is
// backed 1:1.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// wrapped GAS in circulation, which equals the amount of GAS held by the
// contract.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the wrapped GAS
// balance of the specified account.
func BalanceOf(holder interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, holder)
}

// Transfer is a NEP-17 standard method that transfers wrapped GAS from one
// account to another. Can be invoked only by the account owner.
//
// Produces a Transfer notification.
func Transfer(from interop.Hash160, to interop.Hash160, amount int, data interface{}) bool {
	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount, data)
}

// OnNEP17Payment is a callback for the native GAS contract. Sending GAS to
// the wrapped GAS contract is the wrap operation: an equal amount of wGAS
// is minted to the sender.
//
// Produces a Transfer notification with empty "from".
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	ctx := storage.GetContext()

	caller := runtime.GetCallingScriptHash()
	if !common.BytesEqual(caller, interop.Hash160(gas.Hash)) {
		panic("onNEP17Payment: only GAS can be wrapped")
	}
	if len(from) != interop.Hash160Len {
		panic("onNEP17Payment: invalid sender account")
	}
	if amount <= 0 {
		panic("onNEP17Payment: non positive amount")
	}

	token.mint(ctx, from, amount)
}

// Unwrap burns the given amount of the holder's wrapped GAS and sends the
// backing GAS back to the holder in the same call. The burn happens
// strictly before the GAS transfer.
//
// Produces a Transfer notification with empty "to".
func Unwrap(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(from)

	if amount <= 0 {
		panic("unwrap: non positive amount")
	}

	token.burn(ctx, from, amount)

	transferred := gas.Transfer(runtime.GetExecutingScriptHash(), from, amount, nil)
	if !transferred {
		panic("unwrap: failed to transfer GAS, aborting")
	}
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !runtime.CheckWitness(common.CommitteeAddress()) {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("wrapped GAS contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, t.CirculationKey)
	if supply != nil {
		return supply.(int)
	}

	return 0
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	return common.GetIntOrZero(ctx, holder)
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int, data interface{}) bool {
	if amount < 0 {
		panic("transfer: negative amount")
	}
	if len(to) != interop.Hash160Len || !isUsableAddress(from) {
		runtime.Log("transfer: bad script hashes")
		return false
	}

	balance := common.GetIntOrZero(ctx, from)
	if balance < amount {
		runtime.Log("transfer: not enough wrapped GAS")
		return false
	}

	if amount != 0 && !common.BytesEqual(from, to) {
		storage.Put(ctx, from, balance-amount)
		storage.Put(ctx, to, common.GetIntOrZero(ctx, to)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)
	postTransfer(from, to, amount, data)

	return true
}

func (t Token) mint(ctx storage.Context, to interop.Hash160, amount int) {
	storage.Put(ctx, to, common.GetIntOrZero(ctx, to)+amount)
	storage.Put(ctx, t.CirculationKey, t.getSupply(ctx)+amount)

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
	postTransfer(nil, to, amount, nil)
}

func (t Token) burn(ctx storage.Context, from interop.Hash160, amount int) {
	balance := common.GetIntOrZero(ctx, from)
	if balance < amount {
		panic("unwrap: insufficient wrapped GAS")
	}
	storage.Put(ctx, from, balance-amount)

	supply := t.getSupply(ctx)
	if supply < amount {
		panic("negative supply after burn")
	}
	storage.Put(ctx, t.CirculationKey, supply-amount)

	runtime.Notify("Transfer", from, interop.Hash160(nil), amount)
}

// postTransfer notifies a contract recipient about the received tokens, as
// the NEP-17 standard requires. This is what lets the custody vault react
// to wGAS minted to it in the middle of a wrap.
func postTransfer(from, to interop.Hash160, amount int, data interface{}) {
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

// isUsableAddress checks if the sender either signed the transaction or is
// the calling smart contract.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		callingScriptHash := runtime.GetCallingScriptHash()
		if common.BytesEqual(callingScriptHash, addr) {
			return true
		}
	}

	return false
}
