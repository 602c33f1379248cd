/*
Wrapped GAS contract is a NEP-17 token backed 1:1 by GAS it holds.

Sending GAS to the contract address mints an equal amount of wGAS to the
sender; unwrap burns the caller's wGAS and sends the backing GAS back in
the same call. The contract keeps no other state and takes no fees, so its
total supply always equals the GAS on its account.

The custody vault uses this contract as its wrap adapter: wrap and unwrap
there are a GAS payment here and an unwrap call here. Nothing in this
contract is vault-specific though, any account or contract can wrap GAS
directly.

# Contract notifications

Transfer notification. This is the NEP-17 standard notification. Minting
(wrap) leaves "from" empty, burning (unwrap) leaves "to" empty.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package wrapgas
