package evm

import (
	"fmt"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/fixtures"
)

// fieldChecker accumulates comparisons and keeps only the first mismatch.
type fieldChecker struct {
	prefix string
	err    error
}

func (c *fieldChecker) name(field string) string {
	return c.prefix + field
}

func (c *fieldChecker) str(field, expected, actual string) {
	if c.err == nil && expected != actual {
		c.err = common.NewErrFieldMismatch(c.name(field), expected, actual)
	}
}

func (c *fieldChecker) strPtr(field string, expected, actual *string) {
	if c.err != nil {
		return
	}
	switch {
	case expected == nil && actual == nil:
	case expected == nil || actual == nil || *expected != *actual:
		c.err = common.NewErrFieldMismatch(c.name(field), expected, actual)
	}
}

func (c *fieldChecker) qty(field string, expected, actual common.Quantity) {
	if c.err == nil && !expected.Equal(actual) {
		c.err = common.NewErrFieldMismatch(c.name(field), expected, actual)
	}
}

func (c *fieldChecker) qtyPtr(field string, expected, actual *common.Quantity) {
	if c.err != nil {
		return
	}
	switch {
	case expected == nil && actual == nil:
	case expected == nil || actual == nil || !expected.Equal(*actual):
		c.err = common.NewErrFieldMismatch(c.name(field), expected, actual)
	}
}

func (c *fieldChecker) length(field string, expected, actual int) bool {
	if c.err == nil && expected != actual {
		c.err = common.NewErrFieldMismatch(c.name(field), expected, actual)
	}
	return c.err == nil
}

// CompareBlock checks a live block against its golden fixture. The block's
// baseFeePerGas is only checked when the fixture records one.
func CompareBlock(actual *common.Block, expected fixtures.BlockFixture) error {
	if actual == nil {
		return common.NewErrFieldMismatch("block", expected.Hash, nil)
	}
	c := &fieldChecker{}
	c.strPtr("hash", &expected.Hash, actual.Hash)
	c.str("parentHash", expected.ParentHash, actual.ParentHash)
	c.qtyPtr("number", &expected.Number, actual.Number)
	c.qtyPtr("timestamp", &expected.Timestamp, actual.Timestamp)
	c.str("nonce", expected.Nonce, actual.Nonce)
	c.qty("difficulty", expected.Difficulty, actual.Difficulty)
	c.qty("gasLimit", expected.GasLimit, actual.GasLimit)
	c.qty("gasUsed", expected.GasUsed, actual.GasUsed)
	c.str("miner", expected.Miner, actual.Miner)
	c.str("extraData", expected.ExtraData, actual.ExtraData)
	if expected.BaseFeePerGas != nil {
		c.qtyPtr("baseFeePerGas", expected.BaseFeePerGas, actual.BaseFeePerGas)
	}
	if c.err != nil {
		return c.err
	}

	if actual.Transactions == nil {
		return common.NewErrFieldMismatch("transactions", "list", nil)
	}
	txs := expected.TxHashes()
	if !c.length("txs.length", len(txs), len(actual.Transactions)) {
		return c.err
	}
	for i := range txs {
		c.str(fmt.Sprintf("txs[%d]", i), txs[i], actual.Transactions[i])
	}
	return c.err
}

// CompareTransaction checks a live transaction. Fee-market fields must match
// on type 2 transactions and must be null on every other type.
func CompareTransaction(actual *common.Transaction, expected fixtures.TxFixture) error {
	if actual == nil {
		return common.NewErrFieldMismatch("transaction", expected.Hash, nil)
	}
	c := &fieldChecker{}
	c.str("hash", expected.Hash, actual.Hash)
	c.str("blockHash", expected.BlockHash, actual.BlockHash)
	c.qty("blockNumber", expected.BlockNumber, actual.BlockNumber)
	c.qty("type", expected.Type, actual.Type)
	c.qty("index", expected.Index, actual.Index)
	c.str("from", expected.From, actual.From)
	c.strPtr("to", expected.To, actual.To)
	c.qty("gasLimit", expected.GasLimit, actual.GasLimit)
	c.qty("gasPrice", expected.GasPrice, actual.GasPrice)
	if expected.IsFeeMarket() {
		c.qtyPtr("maxFeePerGas", expected.MaxFeePerGas, actual.MaxFeePerGas)
		c.qtyPtr("maxPriorityFeePerGas", expected.MaxPriorityFeePerGas, actual.MaxPriorityFeePerGas)
	} else {
		c.qtyPtr("maxFeePerGas:null", nil, actual.MaxFeePerGas)
		c.qtyPtr("maxPriorityFeePerGas:null", nil, actual.MaxPriorityFeePerGas)
	}
	c.qty("value", expected.Value, actual.Value)
	c.qty("nonce", expected.Nonce, actual.Nonce)
	c.str("data", expected.Data, actual.Data)
	c.strPtr("creates", expected.Creates, actual.Creates)
	c.str("signature.r", expected.Signature.R, actual.Signature.R)
	c.str("signature.s", expected.Signature.S, actual.Signature.S)
	c.qty("signature.v", expected.Signature.V, actual.Signature.NetworkV)
	return c.err
}

// CompareLog checks one log entry.
func CompareLog(actual common.Log, expected fixtures.LogFixture) error {
	return compareLog(&fieldChecker{}, actual, expected)
}

func compareLog(c *fieldChecker, actual common.Log, expected fixtures.LogFixture) error {
	c.str("address", expected.Address, actual.Address)
	c.str("blockHash", expected.BlockHash, actual.BlockHash)
	c.qty("blockNumber", expected.BlockNumber, actual.BlockNumber)
	c.str("data", expected.Data, actual.Data)
	c.qty("logIndex", expected.Index, actual.Index)
	if c.length("topics.length", len(expected.Topics), len(actual.Topics)) {
		for i := range expected.Topics {
			c.str(fmt.Sprintf("topics[%d]", i), expected.Topics[i], actual.Topics[i])
		}
	}
	c.str("transactionHash", expected.TransactionHash, actual.TransactionHash)
	c.qty("transactionIndex", expected.TransactionIndex, actual.TransactionIndex)
	return c.err
}

// CompareReceipt checks a live receipt. status and root are only checked
// when both the live receipt and the fixture carry them.
func CompareReceipt(actual *common.Receipt, expected fixtures.ReceiptFixture) error {
	if actual == nil {
		return common.NewErrFieldMismatch("receipt", expected.Hash, nil)
	}
	c := &fieldChecker{}
	c.str("hash", expected.Hash, actual.Hash)
	c.qty("index", expected.Index, actual.Index)
	c.strPtr("to", expected.To, actual.To)
	c.str("from", expected.From, actual.From)
	c.strPtr("contractAddress", expected.ContractAddress, actual.ContractAddress)
	c.str("blockHash", expected.BlockHash, actual.BlockHash)
	c.qty("blockNumber", expected.BlockNumber, actual.BlockNumber)
	c.str("logsBloom", expected.LogsBloom, actual.LogsBloom)
	if c.err != nil {
		return c.err
	}

	if actual.Logs == nil {
		return common.NewErrFieldMismatch("logs", "list", nil)
	}
	if !c.length("logs.length", len(expected.Logs), len(actual.Logs)) {
		return c.err
	}
	for i := range expected.Logs {
		lc := &fieldChecker{prefix: fmt.Sprintf("logs[%d].", i)}
		if err := compareLog(lc, actual.Logs[i], expected.Logs[i]); err != nil {
			return err
		}
	}

	c.qty("gasUsed", expected.GasUsed, actual.GasUsed)
	c.qty("cumulativeGasUsed", expected.CumulativeGasUsed, actual.CumulativeGasUsed)
	c.qty("gasPrice", expected.GasPrice, actual.GasPrice)
	if actual.Status != nil && expected.Status != nil {
		c.qtyPtr("status", expected.Status, actual.Status)
	}
	if actual.Root != nil && expected.Root != nil {
		c.strPtr("root", expected.Root, actual.Root)
	}
	return c.err
}

// CheckPendingBlock asserts the shape of an unsealed block: no hash, and a
// numeric number and timestamp.
func CheckPendingBlock(block *common.Block) error {
	if block == nil {
		return common.NewErrShapeInvariant("block", "pending block is missing")
	}
	if block.Hash != nil {
		return common.NewErrShapeInvariant("hash", "must be null on a pending block, got "+*block.Hash)
	}
	if block.Number == nil || !block.Number.IsValid() {
		return common.NewErrShapeInvariant("number", "must be present and numeric, got "+common.RenderValue(block.Number))
	}
	if block.Timestamp == nil || !block.Timestamp.IsValid() {
		return common.NewErrShapeInvariant("timestamp", "must be present and numeric, got "+common.RenderValue(block.Timestamp))
	}
	return nil
}
