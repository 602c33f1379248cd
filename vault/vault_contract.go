package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/vault-contract/common"
)

const (
	adminKey        = "vaultAdmin"
	wrapContractKey = "wrapScriptHash"

	// guardKey is set for the duration of any vault method that calls
	// out of the contract and is removed on normal exit. A fault exit
	// rolls the flag back together with the rest of the transaction.
	guardKey = "txGuard"

	// pendingPullKey holds the script hash of the token DepositToken is
	// currently pulling in. Payments from any other token are rejected.
	pendingPullKey = "pendingPull"
)

var (
	nativeBalancePrefix = []byte{0x01}
	tokenBalancePrefix  = []byte{0x02}
)

func _deploy(data interface{}, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		admin   interop.Hash160
		wrapGAS interop.Hash160
	})

	if len(args.admin) != interop.Hash160Len {
		panic("init: invalid administrator account")
	}
	if len(args.wrapGAS) != interop.Hash160Len {
		panic("init: invalid wrap contract script hash")
	}

	storage.Put(ctx, adminKey, args.admin)
	storage.Put(ctx, wrapContractKey, args.wrapGAS)

	runtime.Log("vault contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by the vault administrator.
func Update(script []byte, manifest []byte, data interface{}) {
	ctx := storage.GetReadOnlyContext()
	common.CheckAdminWitness(getAdmin(ctx))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("vault contract updated")
}

// OnNEP17Payment is a callback seen by the vault whenever NEP-17 assets
// arrive on its account. It accepts three kinds of payments and rejects
// everything else:
//
//   - GAS from any account is a native deposit and credits the sender,
//     except GAS coming from the wrap contract, which is Unwrap proceeds
//     and is accounted by Unwrap itself;
//   - wrapped GAS minted to the vault in the middle of Wrap;
//   - a token DepositToken is currently pulling in.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	ctx := storage.GetContext()
	caller := runtime.GetCallingScriptHash()
	wrapGAS := getWrapContract(ctx)

	if common.BytesEqual(caller, interop.Hash160(gas.Hash)) {
		if len(from) == interop.Hash160Len && common.BytesEqual(from, wrapGAS) {
			if !guardHeld(ctx) {
				panic("onNEP17Payment: unexpected GAS sender")
			}
			// Unwrap in progress, it credits the depositor itself.
			return
		}

		if len(from) != interop.Hash160Len {
			panic("onNEP17Payment: invalid depositor account")
		}
		if amount <= 0 {
			panic("onNEP17Payment: non positive amount")
		}

		creditNative(ctx, from, amount)
		runtime.Notify("Deposit", from, nativeAssetID(), amount)
		return
	}

	if common.BytesEqual(caller, wrapGAS) {
		if !guardHeld(ctx) {
			panic("onNEP17Payment: wrapped GAS cannot be deposited directly")
		}
		// Wrap in progress, the freshly minted wGAS stays on the vault
		// account and is accounted by Wrap itself.
		return
	}

	pending := storage.Get(ctx, pendingPullKey)
	if pending == nil || !common.BytesEqual(caller, pending.([]byte)) {
		panic("onNEP17Payment: unexpected payment sender")
	}
}

// DepositNative pulls the given amount of GAS from the depositor account
// into vault custody. It is a convenience front to a plain GAS transfer to
// the vault address: crediting and the Deposit notification happen in
// OnNEP17Payment during the transfer.
func DepositNative(from interop.Hash160, amount int) {
	common.CheckOwnerWitness(from)

	if amount <= 0 {
		panic("deposit: non positive amount")
	}

	transferred := gas.Transfer(from, runtime.GetExecutingScriptHash(), amount, nil)
	if !transferred {
		panic("deposit: failed to transfer GAS, aborting")
	}
}

// WithdrawNative sends the given amount of deposited GAS back to its owner.
// The ledger is debited strictly before GAS leaves the vault, so a receiver
// that regains control during the transfer observes the reduced balance;
// nested calls into the vault are rejected outright by the guard.
func WithdrawNative(user interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(user)
	guardEnter(ctx)

	if amount <= 0 {
		panic("withdraw: non positive amount")
	}

	debitNative(ctx, user, amount)

	transferred := gas.Transfer(runtime.GetExecutingScriptHash(), user, amount, nil)
	if !transferred {
		panic("withdraw: failed to transfer GAS, aborting")
	}

	runtime.Notify("Withdraw", user, nativeAssetID(), amount)
	guardExit(ctx)
}

// DepositToken pulls the given amount of a NEP-17 token from the depositor
// account into vault custody. GAS must go through the native deposit and
// wrapped GAS is not a deposit target at all: a wGAS ledger entry can only
// appear via Wrap, otherwise the same value could be counted in both the
// native and the wrapped column.
//
// The ledger is credited before the token is pulled. The pull runs in the
// same transaction, so a failed or short transfer faults and rolls the
// credit back, it can never be observed.
func DepositToken(user interop.Hash160, token interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(user)

	if len(token) != interop.Hash160Len {
		panic("deposit: invalid token contract")
	}
	if common.BytesEqual(token, getWrapContract(ctx)) {
		panic("deposit: wrapped GAS cannot be deposited as a token")
	}
	if common.BytesEqual(token, interop.Hash160(gas.Hash)) {
		panic("deposit: GAS must be deposited as the native asset")
	}
	if amount <= 0 {
		panic("deposit: non positive amount")
	}

	guardEnter(ctx)

	creditToken(ctx, token, user, amount)

	storage.Put(ctx, pendingPullKey, token)
	transferred := contract.Call(token, "transfer", contract.All,
		user, runtime.GetExecutingScriptHash(), amount, nil).(bool)
	if !transferred {
		panic("deposit: failed to pull token, aborting")
	}
	storage.Delete(ctx, pendingPullKey)

	runtime.Notify("Deposit", user, token, amount)
	guardExit(ctx)
}

// WithdrawToken sends the given amount of a deposited NEP-17 token back to
// its owner. Works for wrapped GAS entries obtained via Wrap too.
func WithdrawToken(user interop.Hash160, token interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(user)

	if len(token) != interop.Hash160Len {
		panic("withdraw: invalid token contract")
	}

	guardEnter(ctx)

	if amount <= 0 {
		panic("withdraw: non positive amount")
	}

	debitToken(ctx, token, user, amount)

	transferred := contract.Call(token, "transfer", contract.All,
		runtime.GetExecutingScriptHash(), user, amount, nil).(bool)
	if !transferred {
		panic("withdraw: failed to transfer token, aborting")
	}

	runtime.Notify("Withdraw", user, token, amount)
	guardExit(ctx)
}

// Wrap converts part of the depositor's native GAS balance into a wrapped
// GAS balance without the assets leaving vault custody. The native column
// is debited, GAS is sent to the wrap contract which mints wGAS back to the
// vault account in the same call, and the wrapped column is credited.
func Wrap(user interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(user)
	guardEnter(ctx)

	if amount <= 0 {
		panic("wrap: non positive amount")
	}

	debitNative(ctx, user, amount)

	wrapGAS := getWrapContract(ctx)
	transferred := gas.Transfer(runtime.GetExecutingScriptHash(), wrapGAS, amount, nil)
	if !transferred {
		panic("wrap: failed to transfer GAS, aborting")
	}

	creditToken(ctx, wrapGAS, user, amount)
	runtime.Notify("WrapGAS", user, amount)
	guardExit(ctx)
}

// Unwrap converts part of the depositor's wrapped GAS balance back into the
// native one. The wrapped column is debited, the vault's wGAS is burned by
// the wrap contract which returns GAS in the same call, and the native
// column is credited.
func Unwrap(user interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(user)
	guardEnter(ctx)

	if amount <= 0 {
		panic("unwrap: non positive amount")
	}

	wrapGAS := getWrapContract(ctx)
	debitToken(ctx, wrapGAS, user, amount)

	contract.Call(wrapGAS, "unwrap", contract.All,
		runtime.GetExecutingScriptHash(), amount)

	creditNative(ctx, user, amount)
	runtime.Notify("UnwrapGAS", user, amount)
	guardExit(ctx)
}

// NativeDepositOf returns the native GAS balance deposited by the given
// account. Can be invoked only by the vault administrator: depositors act
// on their balances via the custody methods but cannot read each other's.
func NativeDepositOf(holder interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	common.CheckAdminWitness(getAdmin(ctx))

	return common.GetIntOrZero(ctx, nativeKey(holder))
}

// DepositOf returns the balance of the given NEP-17 token deposited by the
// given account. Can be invoked only by the vault administrator.
func DepositOf(holder interop.Hash160, token interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	common.CheckAdminWitness(getAdmin(ctx))

	return common.GetIntOrZero(ctx, tokenKey(token, holder))
}

// NativeDeposits returns an iterator over all native ledger entries as
// (account, amount) pairs. Can be invoked only by the vault administrator.
func NativeDeposits() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	common.CheckAdminWitness(getAdmin(ctx))

	return storage.Find(ctx, nativeBalancePrefix, storage.RemovePrefix)
}

// TransferAdmin passes the administrator role to another account. Can be
// invoked only by the current administrator.
func TransferAdmin(newAdmin interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(getAdmin(ctx))

	if len(newAdmin) != interop.Hash160Len {
		panic("transferAdmin: invalid administrator account")
	}

	storage.Put(ctx, adminKey, newAdmin)
	runtime.Log("vault administrator updated")
}

// Admin returns the script hash of the current vault administrator.
func Admin() interop.Hash160 {
	return getAdmin(storage.GetReadOnlyContext())
}

// WrapContract returns the script hash of the wrapped GAS contract the
// vault was deployed with.
func WrapContract() interop.Hash160 {
	return getWrapContract(storage.GetReadOnlyContext())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getAdmin(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, adminKey).(interop.Hash160)
}

func getWrapContract(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, wrapContractKey).(interop.Hash160)
}

// nativeAssetID is the reserved asset identifier standing for GAS in
// Deposit and Withdraw notifications.
func nativeAssetID() interop.Hash160 {
	return make([]byte, interop.Hash160Len)
}

func guardEnter(ctx storage.Context) {
	if guardHeld(ctx) {
		panic("reentrant call into the vault")
	}
	storage.Put(ctx, guardKey, true)
}

func guardExit(ctx storage.Context) {
	storage.Delete(ctx, guardKey)
}

func guardHeld(ctx storage.Context) bool {
	return storage.Get(ctx, guardKey) != nil
}

func nativeKey(holder interop.Hash160) []byte {
	return append(nativeBalancePrefix, holder...)
}

func tokenKey(token interop.Hash160, holder interop.Hash160) []byte {
	return append(append(tokenBalancePrefix, token...), holder...)
}

func creditNative(ctx storage.Context, holder interop.Hash160, amount int) {
	key := nativeKey(holder)
	storage.Put(ctx, key, common.GetIntOrZero(ctx, key)+amount)
}

func debitNative(ctx storage.Context, holder interop.Hash160, amount int) {
	key := nativeKey(holder)
	balance := common.GetIntOrZero(ctx, key)
	if balance < amount {
		panic("insufficient balance")
	}
	// zero entries are kept, not deleted
	storage.Put(ctx, key, balance-amount)
}

func creditToken(ctx storage.Context, token interop.Hash160, holder interop.Hash160, amount int) {
	key := tokenKey(token, holder)
	storage.Put(ctx, key, common.GetIntOrZero(ctx, key)+amount)
}

func debitToken(ctx storage.Context, token interop.Hash160, holder interop.Hash160, amount int) {
	key := tokenKey(token, holder)
	balance := common.GetIntOrZero(ctx, key)
	if balance < amount {
		panic("insufficient balance")
	}
	storage.Put(ctx, key, balance-amount)
}
