// Package vault contains RPC wrappers for the Custody Vault contract.
package vault

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// DepositEvent represents "Deposit" event emitted by the contract.
type DepositEvent struct {
	Depositor util.Uint160
	Asset     util.Uint160
	Amount    *big.Int
}

// WithdrawEvent represents "Withdraw" event emitted by the contract.
type WithdrawEvent struct {
	Depositor util.Uint160
	Asset     util.Uint160
	Amount    *big.Int
}

// WrapGASEvent represents "WrapGAS" event emitted by the contract.
type WrapGASEvent struct {
	Depositor util.Uint160
	Amount    *big.Int
}

// UnwrapGASEvent represents "UnwrapGAS" event emitted by the contract.
type UnwrapGASEvent struct {
	Depositor util.Uint160
	Amount    *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Admin invokes `admin` method of contract.
func (c *ContractReader) Admin() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "admin"))
}

// WrapContract invokes `wrapContract` method of contract.
func (c *ContractReader) WrapContract() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "wrapContract"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// NativeDepositOf invokes `nativeDepositOf` method of contract.
func (c *ContractReader) NativeDepositOf(holder util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "nativeDepositOf", holder))
}

// DepositOf invokes `depositOf` method of contract.
func (c *ContractReader) DepositOf(holder util.Uint160, token util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "depositOf", holder, token))
}

// NativeDeposits invokes `nativeDeposits` method of contract.
// It returns an iterator session with the native ledger entries, use
// TraverseIterator method to traverse it and TerminateSession to stop it
// earlier than needed.
func (c *ContractReader) NativeDeposits() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "nativeDeposits"))
}

// NativeDepositsExpanded is similar to NativeDeposits (uses the same
// contract method), but can be useful if the server used doesn't support
// sessions and doesn't expand iterators. It creates a script that will get
// the specified number of result items from the iterator right in the VM
// and return them to you. It's only limited by VM stack and GAS available
// for RPC invocations.
func (c *ContractReader) NativeDepositsExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "nativeDeposits", _numOfIteratorItems))
}

// TerminateSession closes the given session, returning an error if anything
// goes wrong. It's not strictly required to close the session (it'll expire on
// the server anyway), but it helps to release server resources earlier.
func (c *ContractReader) TerminateSession(session uuid.UUID) error {
	return c.invoker.TerminateSession(session)
}

// TraverseIterator allows to traverse the given iterator. It takes a
// session and an iterator from the NativeDeposits method, the amount of items
// to be traversed and returns a list of items (which can be empty if the
// iterator is drained).
func (c *ContractReader) TraverseIterator(session uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error) {
	return c.invoker.TraverseIterator(session, iterator, num)
}

// DepositNative creates a transaction invoking `depositNative` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DepositNative(from util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "depositNative", from, amount)
}

// DepositNativeTransaction creates a transaction invoking `depositNative` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositNativeTransaction(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "depositNative", from, amount)
}

// DepositNativeUnsigned creates a transaction invoking `depositNative` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DepositNativeUnsigned(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "depositNative", nil, from, amount)
}

// WithdrawNative creates a transaction invoking `withdrawNative` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawNative(user util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawNative", user, amount)
}

// WithdrawNativeTransaction creates a transaction invoking `withdrawNative` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawNativeTransaction(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawNative", user, amount)
}

// WithdrawNativeUnsigned creates a transaction invoking `withdrawNative` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) WithdrawNativeUnsigned(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawNative", nil, user, amount)
}

// DepositToken creates a transaction invoking `depositToken` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DepositToken(user util.Uint160, token util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "depositToken", user, token, amount)
}

// DepositTokenTransaction creates a transaction invoking `depositToken` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTokenTransaction(user util.Uint160, token util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "depositToken", user, token, amount)
}

// DepositTokenUnsigned creates a transaction invoking `depositToken` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) DepositTokenUnsigned(user util.Uint160, token util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "depositToken", nil, user, token, amount)
}

// WithdrawToken creates a transaction invoking `withdrawToken` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawToken(user util.Uint160, token util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawToken", user, token, amount)
}

// WithdrawTokenTransaction creates a transaction invoking `withdrawToken` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTokenTransaction(user util.Uint160, token util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawToken", user, token, amount)
}

// WithdrawTokenUnsigned creates a transaction invoking `withdrawToken` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) WithdrawTokenUnsigned(user util.Uint160, token util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawToken", nil, user, token, amount)
}

// Wrap creates a transaction invoking `wrap` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Wrap(user util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "wrap", user, amount)
}

// WrapTransaction creates a transaction invoking `wrap` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WrapTransaction(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "wrap", user, amount)
}

// WrapUnsigned creates a transaction invoking `wrap` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) WrapUnsigned(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "wrap", nil, user, amount)
}

// Unwrap creates a transaction invoking `unwrap` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Unwrap(user util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "unwrap", user, amount)
}

// UnwrapTransaction creates a transaction invoking `unwrap` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UnwrapTransaction(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "unwrap", user, amount)
}

// UnwrapUnsigned creates a transaction invoking `unwrap` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) UnwrapUnsigned(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "unwrap", nil, user, amount)
}

// TransferAdmin creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferAdmin(newAdmin util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferAdmin", newAdmin)
}

// TransferAdminTransaction creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferAdminTransaction(newAdmin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferAdmin", newAdmin)
}

// TransferAdminUnsigned creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) TransferAdminUnsigned(newAdmin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferAdmin", nil, newAdmin)
}

// DepositEventsFromApplicationLog retrieves a set of all emitted events
// with "Deposit" name from the provided [result.ApplicationLog].
func DepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*DepositEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*DepositEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Deposit" {
				continue
			}
			event := new(DepositEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize event %d from execution %d: %w", j, i, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Depositor, err = uint160FromItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	index++
	e.Asset, err = uint160FromItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Asset: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// WithdrawEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdraw" name from the provided [result.ApplicationLog].
func WithdrawEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WithdrawEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Withdraw" {
				continue
			}
			event := new(WithdrawEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize event %d from execution %d: %w", j, i, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.Depositor, err = uint160FromItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	index++
	e.Asset, err = uint160FromItem(arr[index])
	if err != nil {
		return fmt.Errorf("field Asset: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// WrapGASEventsFromApplicationLog retrieves a set of all emitted events
// with "WrapGAS" name from the provided [result.ApplicationLog].
func WrapGASEventsFromApplicationLog(log *result.ApplicationLog) ([]*WrapGASEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WrapGASEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "WrapGAS" {
				continue
			}
			event := new(WrapGASEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize event %d from execution %d: %w", j, i, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WrapGASEvent or
// returns an error if it's not possible to do to so.
func (e *WrapGASEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Depositor, err = uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// UnwrapGASEventsFromApplicationLog retrieves a set of all emitted events
// with "UnwrapGAS" name from the provided [result.ApplicationLog].
func UnwrapGASEventsFromApplicationLog(log *result.ApplicationLog) ([]*UnwrapGASEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UnwrapGASEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "UnwrapGAS" {
				continue
			}
			event := new(UnwrapGASEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize event %d from execution %d: %w", j, i, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to UnwrapGASEvent or
// returns an error if it's not possible to do to so.
func (e *UnwrapGASEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Depositor, err = uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

func uint160FromItem(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}

	return util.Uint160DecodeBytesBE(b)
}
