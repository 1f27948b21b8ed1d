package harness

import (
	"context"
	"fmt"
	"sync"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/fixtures"
	"github.com/erpc/conformance/util"
)

// mirrorProvider answers every query straight from a network's fixtures, so
// it conforms unless a test breaks it on purpose.
type mirrorProvider struct {
	name string
	nf   fixtures.NetworkFixtures

	mu          sync.Mutex
	calls       map[common.Operation]int
	unsupported map[common.Operation]bool
	failures    map[common.Operation]error
	codeValue   *string
	pending     *common.Block
}

func newMirrorProvider(name string, nf fixtures.NetworkFixtures) *mirrorProvider {
	number := common.Quantity("0x1000")
	ts := common.Quantity("0x65000000")
	return &mirrorProvider{
		name:        name,
		nf:          nf,
		calls:       make(map[common.Operation]int),
		unsupported: make(map[common.Operation]bool),
		failures:    make(map[common.Operation]error),
		pending:     &common.Block{Number: &number, Timestamp: &ts, Transactions: []string{}},
	}
}

func (p *mirrorProvider) Name() string    { return p.name }
func (p *mirrorProvider) Network() string { return p.nf.Network }

func (p *mirrorProvider) enter(op common.Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[op]++
	if p.unsupported[op] {
		return common.NewErrUnsupportedOperation(string(op), p.name)
	}
	return p.failures[op]
}

func (p *mirrorProvider) Calls(op common.Operation) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *mirrorProvider) address(address string) (fixtures.AddressFixture, error) {
	for _, a := range p.nf.Addresses {
		if a.Address == common.NormalizeAddress(address) {
			return a, nil
		}
	}
	return fixtures.AddressFixture{}, fmt.Errorf("unknown address %s", address)
}

func (p *mirrorProvider) GetBalance(ctx context.Context, address string) (common.Quantity, error) {
	if err := p.enter(common.OperationGetBalance); err != nil {
		return "", err
	}
	a, err := p.address(address)
	if err != nil {
		return "", err
	}
	return *a.Balance, nil
}

func (p *mirrorProvider) GetCode(ctx context.Context, address string) (string, error) {
	if err := p.enter(common.OperationGetCode); err != nil {
		return "", err
	}
	if p.codeValue != nil {
		return *p.codeValue, nil
	}
	a, err := p.address(address)
	if err != nil {
		return "", err
	}
	return *a.Code, nil
}

func (p *mirrorProvider) LookupAddress(ctx context.Context, address string) (*string, error) {
	if err := p.enter(common.OperationLookupAddress); err != nil {
		return nil, err
	}
	a, err := p.address(address)
	if err != nil {
		return nil, err
	}
	return a.Name, nil
}

func (p *mirrorProvider) GetStorageAt(ctx context.Context, address string, slot string) (string, error) {
	if err := p.enter(common.OperationGetStorageAt); err != nil {
		return "", err
	}
	a, err := p.address(address)
	if err != nil {
		return "", err
	}
	return a.Storage[slot], nil
}

func (p *mirrorProvider) GetBlock(ctx context.Context, tag common.BlockTag) (*common.Block, error) {
	if err := p.enter(tag.Operation()); err != nil {
		return nil, err
	}
	if tag == common.BlockTagPending {
		return p.pending, nil
	}
	for _, b := range p.nf.Blocks {
		if (tag.IsHash() && string(tag) == b.Hash) || (!tag.IsHash() && common.Quantity(tag).Equal(b.Number)) {
			return blockFromFixture(b), nil
		}
	}
	return nil, nil
}

func (p *mirrorProvider) GetTransaction(ctx context.Context, hash string) (*common.Transaction, error) {
	if err := p.enter(common.OperationGetTransaction); err != nil {
		return nil, err
	}
	for _, t := range p.nf.Transactions {
		if t.Hash == hash {
			return &common.Transaction{
				Hash:                 t.Hash,
				BlockHash:            t.BlockHash,
				BlockNumber:          t.BlockNumber,
				Type:                 t.Type,
				Index:                t.Index,
				From:                 t.From,
				To:                   t.To,
				GasLimit:             t.GasLimit,
				GasPrice:             t.GasPrice,
				MaxFeePerGas:         t.MaxFeePerGas,
				MaxPriorityFeePerGas: t.MaxPriorityFeePerGas,
				Value:                t.Value,
				Nonce:                t.Nonce,
				Data:                 t.Data,
				Creates:              t.Creates,
				Signature:            common.Signature{R: t.Signature.R, S: t.Signature.S, NetworkV: t.Signature.V},
			}, nil
		}
	}
	return nil, fmt.Errorf("unknown transaction %s", hash)
}

func (p *mirrorProvider) GetTransactionReceipt(ctx context.Context, hash string) (*common.Receipt, error) {
	if err := p.enter(common.OperationGetTransactionReceipt); err != nil {
		return nil, err
	}
	for _, r := range p.nf.Receipts {
		if r.Hash == hash {
			logs := make([]common.Log, 0, len(r.Logs))
			for _, l := range r.Logs {
				logs = append(logs, common.Log{
					Address:          l.Address,
					BlockHash:        l.BlockHash,
					BlockNumber:      l.BlockNumber,
					Data:             l.Data,
					Index:            l.Index,
					Topics:           l.Topics,
					TransactionHash:  l.TransactionHash,
					TransactionIndex: l.TransactionIndex,
				})
			}
			return &common.Receipt{
				Hash:              r.Hash,
				Index:             r.Index,
				To:                r.To,
				From:              r.From,
				ContractAddress:   r.ContractAddress,
				BlockHash:         r.BlockHash,
				BlockNumber:       r.BlockNumber,
				LogsBloom:         r.LogsBloom,
				Logs:              logs,
				GasUsed:           r.GasUsed,
				CumulativeGasUsed: r.CumulativeGasUsed,
				GasPrice:          r.GasPrice,
				Status:            r.Status,
				Root:              r.Root,
			}, nil
		}
	}
	return nil, fmt.Errorf("unknown receipt %s", hash)
}

func blockFromFixture(b fixtures.BlockFixture) *common.Block {
	number, ts := b.Number, b.Timestamp
	return &common.Block{
		Hash:          util.StringPtr(b.Hash),
		ParentHash:    b.ParentHash,
		Number:        &number,
		Timestamp:     &ts,
		Nonce:         b.Nonce,
		Difficulty:    b.Difficulty,
		GasLimit:      b.GasLimit,
		GasUsed:       b.GasUsed,
		Miner:         b.Miner,
		ExtraData:     b.ExtraData,
		BaseFeePerGas: b.BaseFeePerGas,
		Transactions:  b.TxHashes(),
	}
}

// fakeSource serves providers from a map keyed by "id/network". Ids without
// an entry in vendors are their own vendor.
type fakeSource struct {
	ids       []string
	vendors   map[string]string
	providers map[string]common.Provider
}

func (s *fakeSource) ProviderIds() []string {
	return s.ids
}

func (s *fakeSource) ProviderVendor(providerId string) string {
	if v, ok := s.vendors[providerId]; ok {
		return v
	}
	return providerId
}

func (s *fakeSource) GetProvider(providerId, network string) (common.Provider, error) {
	return s.providers[providerId+"/"+network], nil
}

func testFixtures() fixtures.NetworkFixtures {
	to := "0x5df9b87991262f6ba471f09758cde1c0fc1de734"
	return fixtures.NetworkFixtures{
		Network: "homestead",
		Addresses: []fixtures.AddressFixture{{
			Address: "0xac1639cf97a3a46d431e6d1216f576622894cbb5",
			Balance: common.Quantity("4918774100000000").Ptr(),
			Code:    util.StringPtr("0x"),
			Name:    util.StringPtr("ricmoo.firefly.eth"),
			Storage: map[string]string{"0x1": "0x0", "0": "0x2a"},
		}},
		Blocks: []fixtures.BlockFixture{{
			Hash:         "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd",
			ParentHash:   "0x5a41d0e66b4120775176c09fcf39e7c0520517a13d2b57b18d33d342df038bfc",
			Number:       "46147",
			Timestamp:    "1438918233",
			Nonce:        "0x4bd5d6b7c5c4c6f0",
			Difficulty:   "1130000000000",
			GasLimit:     "21000",
			GasUsed:      "21000",
			Miner:        "0xe6a7a1d47ff21b6321162aea7c6cb457d5476bca",
			ExtraData:    "0x476574682f76312e302e302f77696e646f77732f676f312e342e32",
			Transactions: []fixtures.TxRef{"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"},
		}},
		Transactions: []fixtures.TxFixture{{
			Hash:        "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
			BlockHash:   "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd",
			BlockNumber: "46147",
			Type:        "0",
			Index:       "0",
			From:        "0xa1e4380a3b1f749673e270229993ee55f35663b4",
			To:          &to,
			GasLimit:    "21000",
			GasPrice:    "50000000000000",
			Value:       "31337",
			Nonce:       "0",
			Data:        "0x",
			Signature: fixtures.SignatureFixture{
				R: "0x88ff6cf0fefd94db46111149ae4bfc179e9b94721fffd821d38d16464b3f71d0",
				S: "0x45e0aff800961cfce805daef7016b9b675c137a6a41a548f7b60a3484c06a33a",
				V: "28",
			},
		}},
		Receipts: []fixtures.ReceiptFixture{{
			Hash:              "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
			Index:             "0",
			To:                &to,
			From:              "0xa1e4380a3b1f749673e270229993ee55f35663b4",
			BlockHash:         "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd",
			BlockNumber:       "46147",
			LogsBloom:         "0x00",
			Logs:              []fixtures.LogFixture{},
			GasUsed:           "21000",
			CumulativeGasUsed: "21000",
			GasPrice:          "50000000000000",
			Root:              util.StringPtr("0x96a8e009d2b88b1483e6941e6812e32263b05683fac202abc622a3e31aed1957"),
		}},
	}
}
