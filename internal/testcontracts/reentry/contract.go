package reentry

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	vaultKey = "vault"
	modeKey  = "mode"
)

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		vault interop.Hash160
	})
	storage.Put(storage.GetContext(), vaultKey, args.vault)
}

// Arm makes the contract re-enter the given vault method with amount 1
// whenever it receives a GAS payment.
func Arm(method string) {
	storage.Put(storage.GetContext(), modeKey, method)
}

// Disarm turns the contract back into a well-behaved GAS receiver.
func Disarm() {
	storage.Delete(storage.GetContext(), modeKey)
}

// DepositTo places the given amount of the contract's own GAS into vault
// custody.
func DepositTo(amount int) {
	vault := getVault()
	if !gas.Transfer(runtime.GetExecutingScriptHash(), vault, amount, nil) {
		panic("depositTo: failed to transfer GAS")
	}
}

// Withdraw takes the given amount of GAS back from vault custody. If the
// contract is armed, the incoming payout triggers a nested vault call.
func Withdraw(amount int) {
	contract.Call(getVault(), "withdrawNative", contract.All,
		runtime.GetExecutingScriptHash(), amount)
}

func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	ctx := storage.GetContext()
	mode := storage.Get(ctx, modeKey)
	if mode == nil {
		return
	}

	self := runtime.GetExecutingScriptHash()
	switch mode.(string) {
	case "withdrawNative":
		contract.Call(getVault(), "withdrawNative", contract.All, self, 1)
	case "wrap":
		contract.Call(getVault(), "wrap", contract.All, self, 1)
	case "unwrap":
		contract.Call(getVault(), "unwrap", contract.All, self, 1)
	default:
		panic("unknown reentry mode")
	}
}

func getVault() interop.Hash160 {
	return storage.Get(storage.GetContext(), vaultKey).(interop.Hash160)
}
