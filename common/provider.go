package common

import (
	"context"
	"strconv"
	"strings"
)

// Operation names are stable identifiers used by the skip matrix and carried
// inside ErrUnsupportedOperation.
type Operation string

const (
	OperationGetBalance            Operation = "getBalance"
	OperationGetCode               Operation = "getCode"
	OperationLookupAddress         Operation = "lookupAddress"
	OperationGetStorageAt          Operation = "getStorageAt"
	OperationGetBlockByNumber      Operation = "getBlock(blockNumber)"
	OperationGetBlockByHash        Operation = "getBlock(blockHash)"
	OperationGetPendingBlock       Operation = "getBlock(pending)"
	OperationGetTransaction        Operation = "getTransaction"
	OperationGetTransactionReceipt Operation = "getTransactionReceipt"
)

// Provider is the capability set a backend must expose to be admitted to the
// conformance matrix.
type Provider interface {
	Name() string
	Network() string
	GetBalance(ctx context.Context, address string) (Quantity, error)
	GetCode(ctx context.Context, address string) (string, error)
	LookupAddress(ctx context.Context, address string) (*string, error)
	GetStorageAt(ctx context.Context, address string, slot string) (string, error)
	GetBlock(ctx context.Context, tag BlockTag) (*Block, error)
	GetTransaction(ctx context.Context, hash string) (*Transaction, error)
	GetTransactionReceipt(ctx context.Context, hash string) (*Receipt, error)
}

// BlockTag selects a block by number, by hash, or by one of the named tags.
type BlockTag string

const (
	BlockTagPending BlockTag = "pending"
	BlockTagLatest  BlockTag = "latest"
)

func BlockTagFromNumber(n uint64) BlockTag {
	return BlockTag(strconv.FormatUint(n, 10))
}

func BlockTagFromHash(hash string) BlockTag {
	return BlockTag(NormalizeHex(hash))
}

func (t BlockTag) IsHash() bool {
	return IsBlockHash(string(t))
}

func (t BlockTag) IsNamed() bool {
	switch t {
	case BlockTagPending, BlockTagLatest, "earliest", "safe", "finalized":
		return true
	}
	return false
}

// Operation returns the skip-matrix operation a GetBlock call with this tag
// corresponds to.
func (t BlockTag) Operation() Operation {
	switch {
	case t == BlockTagPending:
		return OperationGetPendingBlock
	case t.IsHash():
		return OperationGetBlockByHash
	default:
		return OperationGetBlockByNumber
	}
}

// HexNumber renders a numeric tag as a JSON-RPC quantity.
func (t BlockTag) HexNumber() (string, error) {
	if t.IsNamed() {
		return string(t), nil
	}
	n, err := Quantity(strings.TrimSpace(string(t))).Uint64()
	if err != nil {
		return "", err
	}
	return "0x" + strconv.FormatUint(n, 16), nil
}

// Block is a live block. Hash is nil for pending blocks; Number and Timestamp
// are pointers so the pending shape check can tell absence from zero.
type Block struct {
	Hash          *string
	ParentHash    string
	Number        *Quantity
	Timestamp     *Quantity
	Nonce         string
	Difficulty    Quantity
	GasLimit      Quantity
	GasUsed       Quantity
	Miner         string
	ExtraData     string
	BaseFeePerGas *Quantity
	Transactions  []string
}

type Signature struct {
	R string
	S string
	// NetworkV is the raw, chain-aware v value as reported on the wire.
	NetworkV Quantity
}

type Transaction struct {
	Hash                 string
	BlockHash            string
	BlockNumber          Quantity
	Type                 Quantity
	Index                Quantity
	From                 string
	To                   *string
	GasLimit             Quantity
	GasPrice             Quantity
	MaxFeePerGas         *Quantity
	MaxPriorityFeePerGas *Quantity
	Value                Quantity
	Nonce                Quantity
	Data                 string
	Creates              *string
	Signature            Signature
}

type Log struct {
	Address          string
	BlockHash        string
	BlockNumber      Quantity
	Data             string
	Index            Quantity
	Topics           []string
	TransactionHash  string
	TransactionIndex Quantity
}

type Receipt struct {
	Hash              string
	Index             Quantity
	To                *string
	From              string
	ContractAddress   *string
	BlockHash         string
	BlockNumber       Quantity
	LogsBloom         string
	Logs              []Log
	GasUsed           Quantity
	CumulativeGasUsed Quantity
	GasPrice          Quantity
	Status            *Quantity
	Root              *string
}
