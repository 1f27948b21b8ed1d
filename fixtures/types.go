package fixtures

import (
	"fmt"
	"sort"

	"github.com/erpc/conformance/common"
	"gopkg.in/yaml.v3"
)

// NetworkFixtures is the golden data of one network, in declaration order.
type NetworkFixtures struct {
	Network      string           `yaml:"-" json:"network"`
	Addresses    []AddressFixture `yaml:"addresses" json:"addresses"`
	Blocks       []BlockFixture   `yaml:"blocks" json:"blocks"`
	Transactions []TxFixture      `yaml:"transactions" json:"transactions"`
	Receipts     []ReceiptFixture `yaml:"receipts" json:"receipts"`
}

// AddressFixture lists the account facts to verify. A nil field means the
// corresponding operation is not exercised for this address.
type AddressFixture struct {
	Address string            `yaml:"address" json:"address"`
	Balance *common.Quantity  `yaml:"balance,omitempty" json:"balance,omitempty"`
	Code    *string           `yaml:"code,omitempty" json:"code,omitempty"`
	Name    *string           `yaml:"name,omitempty" json:"name,omitempty"`
	Storage map[string]string `yaml:"storage,omitempty" json:"storage,omitempty"`
}

// StorageSlots returns the storage slots in ascending numeric order.
func (a AddressFixture) StorageSlots() []string {
	slots := make([]string, 0, len(a.Storage))
	for slot := range a.Storage {
		slots = append(slots, slot)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		vi, erri := common.Quantity(slots[i]).Uint256()
		vj, errj := common.Quantity(slots[j]).Uint256()
		if erri != nil || errj != nil {
			return slots[i] < slots[j]
		}
		if vi.Eq(vj) {
			return slots[i] < slots[j]
		}
		return vi.Lt(vj)
	})
	return slots
}

type BlockFixture struct {
	Hash          string           `yaml:"hash" json:"hash"`
	ParentHash    string           `yaml:"parentHash" json:"parentHash"`
	Number        common.Quantity  `yaml:"number" json:"number"`
	Timestamp     common.Quantity  `yaml:"timestamp" json:"timestamp"`
	Nonce         string           `yaml:"nonce" json:"nonce"`
	Difficulty    common.Quantity  `yaml:"difficulty" json:"difficulty"`
	GasLimit      common.Quantity  `yaml:"gasLimit" json:"gasLimit"`
	GasUsed       common.Quantity  `yaml:"gasUsed" json:"gasUsed"`
	Miner         string           `yaml:"miner" json:"miner"`
	ExtraData     string           `yaml:"extraData" json:"extraData"`
	BaseFeePerGas *common.Quantity `yaml:"baseFeePerGas,omitempty" json:"baseFeePerGas,omitempty"`
	Transactions  []TxRef          `yaml:"transactions" json:"transactions"`
}

// TxHashes returns the block's transaction hashes in order.
func (b BlockFixture) TxHashes() []string {
	out := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		out[i] = string(t)
	}
	return out
}

// TxRef is a transaction hash. Fixture authors may paste a full transaction
// object instead, in which case only its hash is kept.
type TxRef string

func (r *TxRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*r = TxRef(value.Value)
		return nil
	case yaml.MappingNode:
		var embedded struct {
			Hash string `yaml:"hash"`
		}
		if err := value.Decode(&embedded); err != nil {
			return err
		}
		if embedded.Hash == "" {
			return fmt.Errorf("embedded transaction at line %d has no hash", value.Line)
		}
		*r = TxRef(embedded.Hash)
		return nil
	}
	return fmt.Errorf("transaction entry at line %d must be a hash or an object", value.Line)
}

type SignatureFixture struct {
	R string          `yaml:"r" json:"r"`
	S string          `yaml:"s" json:"s"`
	V common.Quantity `yaml:"v" json:"v"`
}

type TxFixture struct {
	Hash                 string           `yaml:"hash" json:"hash"`
	BlockHash            string           `yaml:"blockHash" json:"blockHash"`
	BlockNumber          common.Quantity  `yaml:"blockNumber" json:"blockNumber"`
	Type                 common.Quantity  `yaml:"type" json:"type"`
	Index                common.Quantity  `yaml:"index" json:"index"`
	From                 string           `yaml:"from" json:"from"`
	To                   *string          `yaml:"to" json:"to"`
	GasLimit             common.Quantity  `yaml:"gasLimit" json:"gasLimit"`
	GasPrice             common.Quantity  `yaml:"gasPrice" json:"gasPrice"`
	MaxFeePerGas         *common.Quantity `yaml:"maxFeePerGas,omitempty" json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *common.Quantity `yaml:"maxPriorityFeePerGas,omitempty" json:"maxPriorityFeePerGas,omitempty"`
	Value                common.Quantity  `yaml:"value" json:"value"`
	Nonce                common.Quantity  `yaml:"nonce" json:"nonce"`
	Data                 string           `yaml:"data" json:"data"`
	Creates              *string          `yaml:"creates" json:"creates"`
	Signature            SignatureFixture `yaml:"signature" json:"signature"`
}

// IsFeeMarket reports whether the transaction is an EIP-1559 (type 2) one.
func (t TxFixture) IsFeeMarket() bool {
	return t.Type.Equal("2")
}

type LogFixture struct {
	Address          string          `yaml:"address" json:"address"`
	BlockHash        string          `yaml:"blockHash" json:"blockHash"`
	BlockNumber      common.Quantity `yaml:"blockNumber" json:"blockNumber"`
	Data             string          `yaml:"data" json:"data"`
	Index            common.Quantity `yaml:"index" json:"index"`
	Topics           []string        `yaml:"topics" json:"topics"`
	TransactionHash  string          `yaml:"transactionHash" json:"transactionHash"`
	TransactionIndex common.Quantity `yaml:"transactionIndex" json:"transactionIndex"`
}

type ReceiptFixture struct {
	Hash              string           `yaml:"hash" json:"hash"`
	Index             common.Quantity  `yaml:"index" json:"index"`
	To                *string          `yaml:"to" json:"to"`
	From              string           `yaml:"from" json:"from"`
	ContractAddress   *string          `yaml:"contractAddress" json:"contractAddress"`
	BlockHash         string           `yaml:"blockHash" json:"blockHash"`
	BlockNumber       common.Quantity  `yaml:"blockNumber" json:"blockNumber"`
	LogsBloom         string           `yaml:"logsBloom" json:"logsBloom"`
	Logs              []LogFixture     `yaml:"logs" json:"logs"`
	GasUsed           common.Quantity  `yaml:"gasUsed" json:"gasUsed"`
	CumulativeGasUsed common.Quantity  `yaml:"cumulativeGasUsed" json:"cumulativeGasUsed"`
	GasPrice          common.Quantity  `yaml:"gasPrice" json:"gasPrice"`
	Status            *common.Quantity `yaml:"status,omitempty" json:"status,omitempty"`
	Root              *string          `yaml:"root,omitempty" json:"root,omitempty"`
}

// clone returns a deep copy so callers can never reach into the store.
func (n NetworkFixtures) clone() NetworkFixtures {
	out := NetworkFixtures{Network: n.Network}
	out.Addresses = make([]AddressFixture, len(n.Addresses))
	for i, a := range n.Addresses {
		c := a
		c.Balance = cloneQuantity(a.Balance)
		c.Code = cloneString(a.Code)
		c.Name = cloneString(a.Name)
		if a.Storage != nil {
			c.Storage = make(map[string]string, len(a.Storage))
			for k, v := range a.Storage {
				c.Storage[k] = v
			}
		}
		out.Addresses[i] = c
	}
	out.Blocks = make([]BlockFixture, len(n.Blocks))
	for i, b := range n.Blocks {
		c := b
		c.BaseFeePerGas = cloneQuantity(b.BaseFeePerGas)
		c.Transactions = append([]TxRef(nil), b.Transactions...)
		out.Blocks[i] = c
	}
	out.Transactions = make([]TxFixture, len(n.Transactions))
	for i, t := range n.Transactions {
		c := t
		c.To = cloneString(t.To)
		c.Creates = cloneString(t.Creates)
		c.MaxFeePerGas = cloneQuantity(t.MaxFeePerGas)
		c.MaxPriorityFeePerGas = cloneQuantity(t.MaxPriorityFeePerGas)
		out.Transactions[i] = c
	}
	out.Receipts = make([]ReceiptFixture, len(n.Receipts))
	for i, r := range n.Receipts {
		c := r
		c.To = cloneString(r.To)
		c.ContractAddress = cloneString(r.ContractAddress)
		c.Status = cloneQuantity(r.Status)
		c.Root = cloneString(r.Root)
		c.Logs = make([]LogFixture, len(r.Logs))
		for j, l := range r.Logs {
			cl := l
			cl.Topics = append([]string(nil), l.Topics...)
			c.Logs[j] = cl
		}
		out.Receipts[i] = c
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneQuantity(q *common.Quantity) *common.Quantity {
	if q == nil {
		return nil
	}
	v := *q
	return &v
}
