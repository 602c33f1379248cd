// Command vault-audit checks that the vault ledger is fully backed by the
// assets the contract actually holds. It sums the per-account native
// deposits and compares the total with the real GAS balance of the vault,
// then reports the wrapped GAS holding against the token supply.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/vault-contract/rpc/vault"
)

const gasDecimals = 8

func initClient(addr string) (*rpcclient.Client, error) {
	c, err := rpcclient.New(context.Background(), addr, rpcclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("RPC: %w", err)
	}
	err = c.Init()
	if err != nil {
		return nil, fmt.Errorf("RPC init: %w", err)
	}
	return c, nil
}

// ledgerEntry is a single native ledger record, a (holder, amount) pair
// popped from the nativeDeposits iterator.
type ledgerEntry struct {
	holder util.Uint160
	amount *big.Int
}

func parseLedgerEntry(itm stackitem.Item) (ledgerEntry, error) {
	var e ledgerEntry

	pair, ok := itm.Value().([]stackitem.Item)
	if !ok || len(pair) != 2 {
		return e, errors.New("not a key-value pair")
	}

	key, err := pair[0].TryBytes()
	if err != nil {
		return e, fmt.Errorf("entry key: %w", err)
	}

	e.holder, err = util.Uint160DecodeBytesBE(key)
	if err != nil {
		return e, fmt.Errorf("entry key: %w", err)
	}

	e.amount, err = pair[1].TryInteger()
	if err != nil {
		return e, fmt.Errorf("entry value: %w", err)
	}

	return e, nil
}

func fetchNativeLedger(reader *vault.ContractReader) ([]ledgerEntry, error) {
	sessionID, iter, err := reader.NativeDeposits()
	if err != nil {
		return nil, fmt.Errorf("open native ledger iterator: %w", err)
	}
	defer func() {
		_ = reader.TerminateSession(sessionID)
	}()

	var res []ledgerEntry
	for {
		items, err := reader.TraverseIterator(sessionID, &iter, 100)
		if err != nil {
			return nil, fmt.Errorf("traverse native ledger iterator: %w", err)
		}
		if len(items) == 0 {
			return res, nil
		}
		for i := range items {
			e, err := parseLedgerEntry(items[i])
			if err != nil {
				return nil, fmt.Errorf("ledger entry %d: %w", len(res), err)
			}
			res = append(res, e)
		}
	}
}

func cliMain() error {
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		return errors.New("usage: program <RPC> <VAULT_CONTRACT>")
	}

	vaultHash, err := address.StringToUint160(args[1])
	if err != nil {
		return fmt.Errorf("bad contract address: %w", err)
	}

	c, err := initClient(args[0])
	if err != nil {
		return err
	}

	anonReader := vault.NewReader(invoker.New(c, nil), vaultHash)

	admin, err := anonReader.Admin()
	if err != nil {
		return fmt.Errorf("get vault administrator: %w", err)
	}

	wrapHash, err := anonReader.WrapContract()
	if err != nil {
		return fmt.Errorf("get wrap contract address: %w", err)
	}

	// ledger reads require the administrator witness, test invocations
	// pass it for a declared signer without a signature
	adminInv := invoker.New(c, []transaction.Signer{{
		Account: admin,
		Scopes:  transaction.CalledByEntry,
	}})
	adminReader := vault.NewReader(adminInv, vaultHash)

	ledger, err := fetchNativeLedger(adminReader)
	if err != nil {
		return err
	}

	ledgerTotal := new(big.Int)
	for _, e := range ledger {
		ledgerTotal.Add(ledgerTotal, e.amount)
		fmt.Println(address.Uint160ToString(e.holder), fixedn.ToString(e.amount, gasDecimals))
	}

	gasR := gas.NewReader(invoker.New(c, nil))
	realGAS, err := gasR.BalanceOf(vaultHash)
	if err != nil {
		return fmt.Errorf("get GAS balance of the vault: %w", err)
	}

	fmt.Println(len(ledger), "holders, ledger total:", fixedn.ToString(ledgerTotal, gasDecimals),
		"real GAS:", fixedn.ToString(realGAS, gasDecimals))

	if realGAS.Cmp(ledgerTotal) < 0 {
		deficit := new(big.Int).Sub(ledgerTotal, realGAS)
		return fmt.Errorf("native ledger is underbacked by %s GAS", fixedn.ToString(deficit, gasDecimals))
	}

	wrapR := nep17.NewReader(invoker.New(c, nil), wrapHash)
	wrapHolding, err := wrapR.BalanceOf(vaultHash)
	if err != nil {
		return fmt.Errorf("get wrapped GAS balance of the vault: %w", err)
	}
	wrapSupply, err := wrapR.TotalSupply()
	if err != nil {
		return fmt.Errorf("get wrapped GAS supply: %w", err)
	}

	fmt.Println("wrapped GAS held:", fixedn.ToString(wrapHolding, gasDecimals),
		"of supply:", fixedn.ToString(wrapSupply, gasDecimals))

	return nil
}

func main() {
	if err := cliMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
