package upstream

import (
	"encoding/json"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/common"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wire shapes as returned by eth_* JSON-RPC methods. Conversions normalize
// addresses to checksum form and hex to lowercase so comparators can compare
// strictly.

type rpcBlock struct {
	Hash          *string           `json:"hash"`
	ParentHash    string            `json:"parentHash"`
	Number        *common.Quantity  `json:"number"`
	Timestamp     *common.Quantity  `json:"timestamp"`
	Nonce         string            `json:"nonce"`
	Difficulty    common.Quantity   `json:"difficulty"`
	GasLimit      common.Quantity   `json:"gasLimit"`
	GasUsed       common.Quantity   `json:"gasUsed"`
	Miner         string            `json:"miner"`
	ExtraData     string            `json:"extraData"`
	BaseFeePerGas *common.Quantity  `json:"baseFeePerGas"`
	Transactions  []json.RawMessage `json:"transactions"`
}

type rpcTransaction struct {
	Hash                 string           `json:"hash"`
	BlockHash            string           `json:"blockHash"`
	BlockNumber          common.Quantity  `json:"blockNumber"`
	Type                 common.Quantity  `json:"type"`
	TransactionIndex     common.Quantity  `json:"transactionIndex"`
	From                 string           `json:"from"`
	To                   *string          `json:"to"`
	Gas                  common.Quantity  `json:"gas"`
	GasPrice             common.Quantity  `json:"gasPrice"`
	MaxFeePerGas         *common.Quantity `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *common.Quantity `json:"maxPriorityFeePerGas"`
	Value                common.Quantity  `json:"value"`
	Nonce                common.Quantity  `json:"nonce"`
	Input                string           `json:"input"`
	R                    string           `json:"r"`
	S                    string           `json:"s"`
	V                    common.Quantity  `json:"v"`
}

type rpcLog struct {
	Address          string          `json:"address"`
	BlockHash        string          `json:"blockHash"`
	BlockNumber      common.Quantity `json:"blockNumber"`
	Data             string          `json:"data"`
	LogIndex         common.Quantity `json:"logIndex"`
	Topics           []string        `json:"topics"`
	TransactionHash  string          `json:"transactionHash"`
	TransactionIndex common.Quantity `json:"transactionIndex"`
}

type rpcReceipt struct {
	TransactionHash   string           `json:"transactionHash"`
	TransactionIndex  common.Quantity  `json:"transactionIndex"`
	To                *string          `json:"to"`
	From              string           `json:"from"`
	ContractAddress   *string          `json:"contractAddress"`
	BlockHash         string           `json:"blockHash"`
	BlockNumber       common.Quantity  `json:"blockNumber"`
	LogsBloom         string           `json:"logsBloom"`
	Logs              []rpcLog         `json:"logs"`
	GasUsed           common.Quantity  `json:"gasUsed"`
	CumulativeGasUsed common.Quantity  `json:"cumulativeGasUsed"`
	EffectiveGasPrice *common.Quantity `json:"effectiveGasPrice"`
	GasPrice          *common.Quantity `json:"gasPrice"`
	Status            *common.Quantity `json:"status"`
	Root              *string          `json:"root"`
}

func (b *rpcBlock) toBlock() *common.Block {
	block := &common.Block{
		ParentHash:    common.NormalizeHex(b.ParentHash),
		Number:        b.Number,
		Timestamp:     b.Timestamp,
		Nonce:         common.NormalizeHex(b.Nonce),
		Difficulty:    b.Difficulty,
		GasLimit:      b.GasLimit,
		GasUsed:       b.GasUsed,
		Miner:         common.NormalizeAddress(b.Miner),
		ExtraData:     common.NormalizeHex(b.ExtraData),
		BaseFeePerGas: b.BaseFeePerGas,
		Transactions:  make([]string, 0, len(b.Transactions)),
	}
	if b.Hash != nil {
		hash := common.NormalizeHex(*b.Hash)
		block.Hash = &hash
	}
	for _, raw := range b.Transactions {
		block.Transactions = append(block.Transactions, common.NormalizeHex(txHashOf(raw)))
	}
	return block
}

// txHashOf accepts both hash-only and hydrated transaction entries.
func txHashOf(raw json.RawMessage) string {
	var hash string
	if err := sonic.Unmarshal(raw, &hash); err == nil {
		return hash
	}
	var tx struct {
		Hash string `json:"hash"`
	}
	_ = sonic.Unmarshal(raw, &tx)
	return tx.Hash
}

func (t *rpcTransaction) toTransaction() *common.Transaction {
	txType := t.Type
	if txType == "" {
		txType = "0x0"
	}
	tx := &common.Transaction{
		Hash:                 common.NormalizeHex(t.Hash),
		BlockHash:            common.NormalizeHex(t.BlockHash),
		BlockNumber:          t.BlockNumber,
		Type:                 txType,
		Index:                t.TransactionIndex,
		From:                 common.NormalizeAddress(t.From),
		To:                   common.NormalizeAddressPtr(t.To),
		GasLimit:             t.Gas,
		GasPrice:             t.GasPrice,
		MaxFeePerGas:         t.MaxFeePerGas,
		MaxPriorityFeePerGas: t.MaxPriorityFeePerGas,
		Value:                t.Value,
		Nonce:                t.Nonce,
		Data:                 common.NormalizeHex(t.Input),
		Signature: common.Signature{
			R:        common.NormalizeWord(t.R),
			S:        common.NormalizeWord(t.S),
			NetworkV: t.V,
		},
	}
	if t.To == nil {
		if nonce, err := t.Nonce.Uint64(); err == nil && gethcommon.IsHexAddress(t.From) {
			creates := crypto.CreateAddress(gethcommon.HexToAddress(t.From), nonce).Hex()
			tx.Creates = &creates
		}
	}
	return tx
}

func (l *rpcLog) toLog() common.Log {
	topics := make([]string, len(l.Topics))
	for i, topic := range l.Topics {
		topics[i] = common.NormalizeHex(topic)
	}
	return common.Log{
		Address:          common.NormalizeAddress(l.Address),
		BlockHash:        common.NormalizeHex(l.BlockHash),
		BlockNumber:      l.BlockNumber,
		Data:             common.NormalizeHex(l.Data),
		Index:            l.LogIndex,
		Topics:           topics,
		TransactionHash:  common.NormalizeHex(l.TransactionHash),
		TransactionIndex: l.TransactionIndex,
	}
}

func (r *rpcReceipt) toReceipt() *common.Receipt {
	receipt := &common.Receipt{
		Hash:              common.NormalizeHex(r.TransactionHash),
		Index:             r.TransactionIndex,
		To:                common.NormalizeAddressPtr(r.To),
		From:              common.NormalizeAddress(r.From),
		ContractAddress:   common.NormalizeAddressPtr(r.ContractAddress),
		BlockHash:         common.NormalizeHex(r.BlockHash),
		BlockNumber:       r.BlockNumber,
		LogsBloom:         common.NormalizeHex(r.LogsBloom),
		Logs:              make([]common.Log, len(r.Logs)),
		GasUsed:           r.GasUsed,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Status:            r.Status,
	}
	for i := range r.Logs {
		receipt.Logs[i] = r.Logs[i].toLog()
	}
	switch {
	case r.EffectiveGasPrice != nil:
		receipt.GasPrice = *r.EffectiveGasPrice
	case r.GasPrice != nil:
		receipt.GasPrice = *r.GasPrice
	}
	if r.Root != nil {
		root := common.NormalizeHex(*r.Root)
		receipt.Root = &root
	}
	return receipt
}
