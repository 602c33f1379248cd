package tests

import (
	"math/big"
	"path"
	"testing"

	istorage "github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/vault-contract/common"
	"github.com/stretchr/testify/require"
)

const (
	vaultPath   = "../vault"
	reentryPath = "../internal/testcontracts/reentry"
	tokenPath   = "../internal/testcontracts/token"

	oneGAS = int64(1_0000_0000)
)

func deployVaultContract(t *testing.T, e *neotest.Executor, admin, wrapGAS util.Uint160) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))

	args := make([]interface{}, 2)
	args[0] = admin
	args[1] = wrapGAS

	e.DeployContract(t, c, args)
	return c.Hash
}

func deployTokenContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

// newVaultInvoker deploys wrapped GAS and the vault on a fresh chain with
// the committee as the vault administrator. The returned invoker is signed
// by the committee.
func newVaultInvoker(t *testing.T) (*neotest.ContractInvoker, util.Uint160) {
	e := newExecutor(t)

	wrapHash := deployWrapGASContract(t, e)
	vaultHash := deployVaultContract(t, e, e.CommitteeHash, wrapHash)

	return e.CommitteeInvoker(vaultHash), wrapHash
}

// depositGAS transfers GAS from the account straight to the vault address,
// the payable-style deposit.
func depositGAS(t *testing.T, e *neotest.Executor, acc neotest.Signer, vault util.Uint160, amount int64) util.Uint256 {
	gasInv := e.NewInvoker(gasHash(t, e), acc)
	return gasInv.Invoke(t, true, "transfer", acc.ScriptHash(), vault, amount, nil)
}

func TestVaultDeploy(t *testing.T) {
	e := newExecutor(t)
	wrapHash := deployWrapGASContract(t, e)

	c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))

	args := make([]interface{}, 2)
	args[0] = util.Uint160{}
	args[1] = []byte{1, 2, 3}
	e.DeployContractCheckFAULT(t, c, args, "init: invalid wrap contract script hash")

	args[1] = wrapHash
	e.DeployContract(t, c, args)

	inv := e.CommitteeInvoker(c.Hash)
	inv.Invoke(t, wrapHash.BytesBE(), "wrapContract")
}

func TestVaultDepositNative(t *testing.T) {
	c, _ := newVaultInvoker(t)
	e := c.Executor

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	h := depositGAS(t, e, acc, c.Hash, 10*oneGAS)

	// GAS Transfer is the first notification in the tx, vault Deposit follows.
	e.CheckTxNotificationEvent(t, h, 1, state.NotificationEvent{
		ScriptHash: c.Hash,
		Name:       "Deposit",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(accHash.BytesBE()),
			stackitem.NewByteArray(make([]byte, util.Uint160Size)),
			stackitem.NewBigInteger(big.NewInt(10 * oneGAS)),
		}),
	})

	c.Invoke(t, 10*oneGAS, "nativeDepositOf", accHash)
	require.Equal(t, 10*oneGAS, vaultGASBalance(t, e, c.Hash))

	// depositNative is just a front to the same flow
	cAcc := c.WithSigners(acc)
	cAcc.Invoke(t, stackitem.Null{}, "depositNative", accHash, 2*oneGAS)
	c.Invoke(t, 12*oneGAS, "nativeDepositOf", accHash)

	cAcc.InvokeFail(t, "deposit: non positive amount", "depositNative", accHash, 0)
}

func TestVaultWithdrawNative(t *testing.T) {
	c, _ := newVaultInvoker(t)
	e := c.Executor

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	depositGAS(t, e, acc, c.Hash, 10*oneGAS)

	cAcc.InvokeFail(t, "insufficient balance", "withdrawNative", accHash, 11*oneGAS)
	c.Invoke(t, 10*oneGAS, "nativeDepositOf", accHash)

	cAcc.Invoke(t, stackitem.Null{}, "withdrawNative", accHash, 4*oneGAS)
	c.Invoke(t, 6*oneGAS, "nativeDepositOf", accHash)
	require.Equal(t, 6*oneGAS, vaultGASBalance(t, e, c.Hash))

	// withdrawing someone else's balance requires their witness
	other := c.NewAccount(t)
	c.WithSigners(other).InvokeFail(t, "owner witness check failed",
		"withdrawNative", accHash, oneGAS)

	cAcc.InvokeFail(t, "withdraw: non positive amount", "withdrawNative", accHash, -1)
}

func TestVaultDepositToken(t *testing.T) {
	c, wrapHash := newVaultInvoker(t)
	e := c.Executor

	tokHash := deployTokenContract(t, e)
	tok := e.CommitteeInvoker(tokHash)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	tok.Invoke(t, stackitem.Null{}, "mint", accHash, 50*oneGAS)

	h := cAcc.Invoke(t, stackitem.Null{}, "depositToken", accHash, tokHash, 30*oneGAS)
	e.CheckTxNotificationEvent(t, h, 1, state.NotificationEvent{
		ScriptHash: c.Hash,
		Name:       "Deposit",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(accHash.BytesBE()),
			stackitem.NewByteArray(tokHash.BytesBE()),
			stackitem.NewBigInteger(big.NewInt(30 * oneGAS)),
		}),
	})

	c.Invoke(t, 30*oneGAS, "depositOf", accHash, tokHash)
	tok.Invoke(t, 30*oneGAS, "balanceOf", c.Hash)
	tok.Invoke(t, 20*oneGAS, "balanceOf", accHash)

	// a pull the depositor cannot cover faults and leaves no stale credit
	cAcc.InvokeFail(t, "deposit: failed to pull token", "depositToken", accHash, tokHash, 100*oneGAS)
	c.Invoke(t, 30*oneGAS, "depositOf", accHash, tokHash)

	// forbidden deposit targets
	cAcc.InvokeFail(t, "deposit: wrapped GAS cannot be deposited as a token",
		"depositToken", accHash, wrapHash, oneGAS)
	cAcc.InvokeFail(t, "deposit: GAS must be deposited as the native asset",
		"depositToken", accHash, gasHash(t, e), oneGAS)
	cAcc.InvokeFail(t, "deposit: invalid token contract",
		"depositToken", accHash, []byte{1, 2, 3}, oneGAS)
}

func TestVaultWithdrawToken(t *testing.T) {
	c, _ := newVaultInvoker(t)
	e := c.Executor

	tokHash := deployTokenContract(t, e)
	tok := e.CommitteeInvoker(tokHash)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	tok.Invoke(t, stackitem.Null{}, "mint", accHash, 10*oneGAS)
	cAcc.Invoke(t, stackitem.Null{}, "depositToken", accHash, tokHash, 10*oneGAS)

	cAcc.InvokeFail(t, "insufficient balance", "withdrawToken", accHash, tokHash, 11*oneGAS)

	cAcc.Invoke(t, stackitem.Null{}, "withdrawToken", accHash, tokHash, 7*oneGAS)
	c.Invoke(t, 3*oneGAS, "depositOf", accHash, tokHash)
	tok.Invoke(t, 7*oneGAS, "balanceOf", accHash)
	tok.Invoke(t, 3*oneGAS, "balanceOf", c.Hash)

	// a zero entry is a valid steady state, not a removal
	cAcc.Invoke(t, stackitem.Null{}, "withdrawToken", accHash, tokHash, 3*oneGAS)
	c.Invoke(t, 0, "depositOf", accHash, tokHash)
}

// TestVaultWrapUnwrap walks the reference custody scenario: deposit 10,
// wrap 5, unwrap 1, overdraw, withdraw the rest.
func TestVaultWrapUnwrap(t *testing.T) {
	c, wrapHash := newVaultInvoker(t)
	e := c.Executor
	wrap := e.CommitteeInvoker(wrapHash)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	depositGAS(t, e, acc, c.Hash, 10*oneGAS)

	cAcc.InvokeFail(t, "insufficient balance", "wrap", accHash, 11*oneGAS)

	// GAS Transfer, then the wGAS mint Transfer, then WrapGAS
	h := cAcc.Invoke(t, stackitem.Null{}, "wrap", accHash, 5*oneGAS)
	e.CheckTxNotificationEvent(t, h, 2, state.NotificationEvent{
		ScriptHash: c.Hash,
		Name:       "WrapGAS",
		Item: stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(accHash.BytesBE()),
			stackitem.NewBigInteger(big.NewInt(5 * oneGAS)),
		}),
	})

	c.Invoke(t, 5*oneGAS, "nativeDepositOf", accHash)
	c.Invoke(t, 5*oneGAS, "depositOf", accHash, wrapHash)

	// the wrapped value left the vault's GAS account and sits in wGAS
	require.Equal(t, 5*oneGAS, vaultGASBalance(t, e, c.Hash))
	wrap.Invoke(t, 5*oneGAS, "balanceOf", c.Hash)
	wrap.Invoke(t, 5*oneGAS, "totalSupply")

	cAcc.Invoke(t, stackitem.Null{}, "unwrap", accHash, 1*oneGAS)
	c.Invoke(t, 6*oneGAS, "nativeDepositOf", accHash)
	c.Invoke(t, 4*oneGAS, "depositOf", accHash, wrapHash)
	require.Equal(t, 6*oneGAS, vaultGASBalance(t, e, c.Hash))
	wrap.Invoke(t, 4*oneGAS, "balanceOf", c.Hash)

	cAcc.InvokeFail(t, "insufficient balance", "withdrawNative", accHash, 7*oneGAS)

	cAcc.Invoke(t, stackitem.Null{}, "withdrawNative", accHash, 6*oneGAS)
	c.Invoke(t, 0, "nativeDepositOf", accHash)
	c.Invoke(t, 4*oneGAS, "depositOf", accHash, wrapHash)
	require.Equal(t, int64(0), vaultGASBalance(t, e, c.Hash))

	cAcc.InvokeFail(t, "insufficient balance", "unwrap", accHash, 5*oneGAS)
}

func TestVaultUnexpectedPayments(t *testing.T) {
	c, wrapHash := newVaultInvoker(t)
	e := c.Executor

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	// wGAS obtained by wrapping directly cannot be pushed into the vault
	gasInv := e.NewInvoker(gasHash(t, e), acc)
	gasInv.Invoke(t, true, "transfer", accHash, wrapHash, 5*oneGAS, nil)

	wrapAcc := e.NewInvoker(wrapHash, acc)
	wrapAcc.InvokeFail(t, "wrapped GAS cannot be deposited directly",
		"transfer", accHash, c.Hash, 5*oneGAS, nil)

	// neither can an arbitrary token outside of a depositToken pull
	tokHash := deployTokenContract(t, e)
	tok := e.CommitteeInvoker(tokHash)
	tok.Invoke(t, stackitem.Null{}, "mint", accHash, 5*oneGAS)

	tokAcc := e.NewInvoker(tokHash, acc)
	tokAcc.InvokeFail(t, "unexpected payment sender",
		"transfer", accHash, c.Hash, 5*oneGAS, nil)
}

func TestVaultAdminAccess(t *testing.T) {
	c, wrapHash := newVaultInvoker(t)
	e := c.Executor

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	depositGAS(t, e, acc, c.Hash, oneGAS)

	// balances are confidential: even the owner reads fail without the
	// administrator witness
	cAcc.InvokeFail(t, "administrator witness check failed", "nativeDepositOf", accHash)
	cAcc.InvokeFail(t, "administrator witness check failed", "depositOf", accHash, wrapHash)
	cAcc.InvokeFail(t, "administrator witness check failed", "nativeDeposits")

	c.Invoke(t, oneGAS, "nativeDepositOf", accHash)

	s, err := c.TestInvoke(t, "nativeDeposits")
	require.NoError(t, err)
	iter, ok := s.Pop().Value().(*istorage.Iterator)
	require.True(t, ok)
	require.Equal(t, 1, len(iteratorToArray(iter)))
}

func TestVaultTransferAdmin(t *testing.T) {
	c, _ := newVaultInvoker(t)
	e := c.Executor

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()
	cAcc := c.WithSigners(acc)

	cAcc.InvokeFail(t, "administrator witness check failed", "transferAdmin", accHash)
	c.InvokeFail(t, "transferAdmin: invalid administrator account", "transferAdmin", []byte{})

	c.Invoke(t, e.CommitteeHash.BytesBE(), "admin")
	c.Invoke(t, stackitem.Null{}, "transferAdmin", accHash)
	cAcc.Invoke(t, accHash.BytesBE(), "admin")

	// the old administrator lost both read and transfer rights
	c.InvokeFail(t, "administrator witness check failed", "nativeDepositOf", accHash)
	c.InvokeFail(t, "administrator witness check failed", "transferAdmin", e.CommitteeHash)

	cAcc.Invoke(t, 0, "nativeDepositOf", accHash)
	cAcc.Invoke(t, stackitem.Null{}, "transferAdmin", e.CommitteeHash)
}

func TestVaultReentrancy(t *testing.T) {
	c, _ := newVaultInvoker(t)
	e := c.Executor

	ctr := neotest.CompileFile(t, e.CommitteeHash, reentryPath, path.Join(reentryPath, "config.yml"))
	args := make([]interface{}, 1)
	args[0] = c.Hash
	e.DeployContract(t, ctr, args)

	attacker := e.CommitteeInvoker(ctr.Hash)

	// fund the attacker contract and let it deposit on its own behalf
	gasInv := e.CommitteeInvoker(gasHash(t, e)).WithSigners(e.Validator)
	gasInv.Invoke(t, true, "transfer", e.Validator.ScriptHash(), ctr.Hash, 20*oneGAS, nil)

	attacker.Invoke(t, stackitem.Null{}, "depositTo", 10*oneGAS)
	c.Invoke(t, 10*oneGAS, "nativeDepositOf", ctr.Hash)

	// re-entering any guarded method during the payout kills the whole
	// transaction, the ledger and the assets stay intact
	for _, method := range []string{"withdrawNative", "wrap", "unwrap"} {
		attacker.Invoke(t, stackitem.Null{}, "arm", method)
		attacker.InvokeFail(t, "reentrant call into the vault", "withdraw", 5*oneGAS)
		c.Invoke(t, 10*oneGAS, "nativeDepositOf", ctr.Hash)
		require.Equal(t, 10*oneGAS, vaultGASBalance(t, e, c.Hash))
	}

	// disarmed, the same withdrawal goes through exactly once
	attacker.Invoke(t, stackitem.Null{}, "disarm")
	attacker.Invoke(t, stackitem.Null{}, "withdraw", 5*oneGAS)
	c.Invoke(t, 5*oneGAS, "nativeDepositOf", ctr.Hash)
	require.Equal(t, 5*oneGAS, vaultGASBalance(t, e, c.Hash))
	require.Equal(t, 15*oneGAS, e.Chain.GetUtilityTokenBalance(ctr.Hash).Int64())
}

func TestVaultVersion(t *testing.T) {
	c, _ := newVaultInvoker(t)
	c.Invoke(t, common.Version, "version")
}
