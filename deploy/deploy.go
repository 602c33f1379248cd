/*
Package deploy provides vault contracts deployment procedure.
*/
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown
	// contract' substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the vault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance hosting the vault.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	LocalAccount *wallet.Account

	// Account granted the administrator privilege of the vault.
	VaultAdmin util.Uint160

	WrapGASContract CommonDeployPrm
	VaultContract   CommonDeployPrm
}

// Deploy deploys the wrapped GAS token and the vault contract to the Neo
// network represented by given Prm.Blockchain. The token goes first since
// the vault binds to its address at construction.
//
// Deploy is idempotent: contracts already present on the chain (checked by
// the address the local account would deploy them to) are left untouched.
// Deployment progress is logged in detail.
func Deploy(ctx context.Context, prm Prm) error {
	localActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return fmt.Errorf("init transaction sender from local account: %w", err)
	}

	mgmt := management.New(localActor)

	wrapGASAddress, err := syncContract(ctx, syncContractPrm{
		logger:     prm.Logger,
		blockchain: prm.Blockchain,
		localActor: localActor,
		mgmt:       mgmt,
		localNEF:   prm.WrapGASContract.NEF,
		manifest:   prm.WrapGASContract.Manifest,
		deployArgs: nil,
	})
	if err != nil {
		return fmt.Errorf("sync wrapped GAS contract with the chain: %w", err)
	}

	prm.Logger.Info("wrapped GAS contract on the chain", zap.Stringer("address", wrapGASAddress))

	vaultAddress, err := syncContract(ctx, syncContractPrm{
		logger:     prm.Logger,
		blockchain: prm.Blockchain,
		localActor: localActor,
		mgmt:       mgmt,
		localNEF:   prm.VaultContract.NEF,
		manifest:   prm.VaultContract.Manifest,
		deployArgs: []any{prm.VaultAdmin, wrapGASAddress},
	})
	if err != nil {
		return fmt.Errorf("sync vault contract with the chain: %w", err)
	}

	prm.Logger.Info("vault contract on the chain", zap.Stringer("address", vaultAddress))

	return nil
}

type syncContractPrm struct {
	logger     *zap.Logger
	blockchain Blockchain
	localActor *actor.Actor
	mgmt       *management.Contract
	localNEF   nef.File
	manifest   manifest.Manifest
	deployArgs []any
}

// syncContract deploys the contract unless it is already on the chain.
// The final address is a function of the deploying account, so reruns of
// the procedure find the previous deployment.
func syncContract(ctx context.Context, prm syncContractPrm) (util.Uint160, error) {
	if err := ctx.Err(); err != nil {
		return util.Uint160{}, err
	}

	onChainAddress := state.CreateContractHash(prm.localActor.Sender(), prm.localNEF.Checksum, prm.manifest.Name)

	stateOnChain, err := readContractOnChainState(prm.blockchain, onChainAddress)
	if err != nil {
		return util.Uint160{}, err
	}

	if stateOnChain != nil {
		prm.logger.Info("contract is already on the chain, skip deployment",
			zap.String("name", prm.manifest.Name), zap.Stringer("address", onChainAddress))
		return onChainAddress, nil
	}

	prm.logger.Info("deploying contract...",
		zap.String("name", prm.manifest.Name), zap.Stringer("address", onChainAddress))

	txHash, vub, err := prm.mgmt.Deploy(&prm.localNEF, &prm.manifest, prm.deployArgs)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send transaction deploying contract %s: %w", prm.manifest.Name, err)
	}

	_, err = prm.localActor.Wait(txHash, vub, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment of contract %s: %w", prm.manifest.Name, err)
	}

	return onChainAddress, nil
}

func readContractOnChainState(b Blockchain, addr util.Uint160) (*state.Contract, error) {
	res, err := b.GetContractStateByHash(addr)
	if err != nil {
		if strings.Contains(err.Error(), "Unknown contract") {
			return nil, nil
		}
		return nil, fmt.Errorf("read on-chain state of the contract by address %s: %w", addr, err)
	} else if res == nil {
		return nil, errors.New("contract state is returned without error but is nil")
	}

	return res, nil
}
