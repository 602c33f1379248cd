/*
Vault contract is a custody ledger for GAS and NEP-17 tokens.

Every account can place assets into vault custody and later take back
exactly what it deposited: GAS through a plain transfer to the vault address
(or the depositNative helper), tokens through depositToken which pulls them
in. A depositor can also convert between its native GAS balance and a
wrapped GAS (wGAS) balance without the assets leaving custody: wrap sends
GAS to the wrap contract fixed at deployment time and keeps the minted wGAS
on the vault account, unwrap burns it and takes the GAS back.

Balances are confidential. Only the vault administrator set at deployment
time can read them (nativeDepositOf, depositOf, nativeDeposits) and pass the
role on (transferAdmin); the administrator has no power over the assets
themselves, there is no method that moves a depositor's funds with an
administrator witness.

Every method that calls out of the contract (withdrawals, wrap, unwrap,
token pulls) debits the ledger before the outbound call and holds a
transaction-wide guard for its duration, so a counterparty that regains
control mid-operation can neither observe a stale balance nor re-enter the
vault. Any failure faults the transaction and rolls back every ledger
mutation of the call.

# Contract notifications

Deposit notification. Produced when assets are placed into custody. GAS is
represented by the zero Hash160 in the asset field.

	Deposit:
	  - name: depositor
	    type: Hash160
	  - name: asset
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. Produced when assets leave custody.

	Withdraw:
	  - name: depositor
	    type: Hash160
	  - name: asset
	    type: Hash160
	  - name: amount
	    type: Integer

WrapGAS notification. Produced when a native balance is converted into a
wrapped one.

	WrapGAS:
	  - name: depositor
	    type: Hash160
	  - name: amount
	    type: Integer

UnwrapGAS notification. Produced when a wrapped balance is converted back.

	UnwrapGAS:
	  - name: depositor
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package vault
