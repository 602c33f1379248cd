package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/vault-contract/contracts"
	"github.com/nspcc-dev/vault-contract/deploy"
	"go.uber.org/zap"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := flag.String("wallet", "", "Path to the NEP-6 wallet of the deploying account")
	walletPassword := flag.String("password", "", "Password of the deploying account")
	contractsDir := flag.String("contracts", "", "Directory with compiled contracts (wrapgas/, vault/)")
	adminAddress := flag.String("admin", "", "Address of the vault administrator (defaults to the deploying account)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *walletPath == "":
		log.Fatal("missing wallet path")
	case *contractsDir == "":
		log.Fatal("missing contracts directory")
	}

	err := _deploy(*neoRPCEndpoint, *walletPath, *walletPassword, *contractsDir, *adminAddress)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("vault contracts are successfully synchronized with the chain")
}

func _deploy(neoRPCEndpoint, walletPath, walletPassword, contractsDir, adminAddress string) error {
	ctx := context.Background()

	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return fmt.Errorf("open wallet: %w", err)
	}

	acc := w.GetAccount(w.GetChangeAddress())
	if acc == nil {
		return fmt.Errorf("no usable account in wallet '%s'", walletPath)
	}

	err = acc.Decrypt(walletPassword, w.Scrypt)
	if err != nil {
		return fmt.Errorf("unlock account %s: %w", acc.Address, err)
	}

	admin := acc.ScriptHash()
	if adminAddress != "" {
		admin, err = address.StringToUint160(adminAddress)
		if err != nil {
			return fmt.Errorf("bad administrator address: %w", err)
		}
	}

	c, err := rpcclient.New(ctx, neoRPCEndpoint, rpcclient.Options{})
	if err != nil {
		return fmt.Errorf("init Neo RPC client: %w", err)
	}

	err = c.Init()
	if err != nil {
		return fmt.Errorf("Neo RPC client init: %w", err)
	}

	cs, err := contracts.Read(os.DirFS(contractsDir))
	if err != nil {
		return fmt.Errorf("read compiled contracts from '%s': %w", contractsDir, err)
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	return deploy.Deploy(ctx, deploy.Prm{
		Logger:       l,
		Blockchain:   c,
		LocalAccount: acc,
		VaultAdmin:   admin,
		WrapGASContract: deploy.CommonDeployPrm{
			NEF:      cs[0].NEF,
			Manifest: cs[0].Manifest,
		},
		VaultContract: deploy.CommonDeployPrm{
			NEF:      cs[1].NEF,
			Manifest: cs[1].Manifest,
		},
	})
}
