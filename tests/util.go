package tests

import (
	"testing"

	istorage "github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func iteratorToArray(iter *istorage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func gasHash(t *testing.T, e *neotest.Executor) util.Uint160 {
	h, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)
	return h
}

// vaultGASBalance returns the amount of GAS actually held by the contract,
// as opposed to what its ledger says.
func vaultGASBalance(t *testing.T, e *neotest.Executor, h util.Uint160) int64 {
	return e.Chain.GetUtilityTokenBalance(h).Int64()
}
