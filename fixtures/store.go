package fixtures

import (
	"bytes"
	"fmt"

	"github.com/erpc/conformance/common"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Store holds the golden data of every loaded network. It is read-only once
// Load returns and safe to share.
type Store struct {
	order    []string
	networks map[string]NetworkFixtures
}

// Load reads fixture files (YAML, or JSON which is a subset of it). Each file
// maps network names to their fixtures; a network spread over several files
// is concatenated in argument order.
func Load(fs afero.Fs, paths ...string) (*Store, error) {
	s := &Store{networks: make(map[string]NetworkFixtures)}
	for _, path := range paths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixtures file %s: %w", path, err)
		}
		if err := s.add(path, data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromNetworks builds a store from already decoded fixtures.
func FromNetworks(networks ...NetworkFixtures) (*Store, error) {
	s := &Store{networks: make(map[string]NetworkFixtures)}
	for _, n := range networks {
		if err := s.merge(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) add(path string, data []byte) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse fixtures file %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("fixtures file %s must map network names to fixtures", path)
	}
	// Walk the mapping directly so networks keep their declaration order.
	for i := 0; i+1 < len(root.Content); i += 2 {
		network := root.Content[i].Value
		var nf NetworkFixtures
		if err := root.Content[i+1].Decode(&nf); err != nil {
			return common.NewErrFixtureInvalid(network, "failed to decode fixtures from "+path, err)
		}
		nf.Network = network
		if err := s.merge(nf); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) merge(in NetworkFixtures) error {
	nf := in.clone()
	if err := normalize(&nf); err != nil {
		return err
	}
	existing, ok := s.networks[nf.Network]
	if !ok {
		s.order = append(s.order, nf.Network)
		s.networks[nf.Network] = nf
		return nil
	}
	existing.Addresses = append(existing.Addresses, nf.Addresses...)
	existing.Blocks = append(existing.Blocks, nf.Blocks...)
	existing.Transactions = append(existing.Transactions, nf.Transactions...)
	existing.Receipts = append(existing.Receipts, nf.Receipts...)
	s.networks[nf.Network] = existing
	return nil
}

// Networks returns network names in load order.
func (s *Store) Networks() []string {
	return append([]string(nil), s.order...)
}

// Get returns a private copy of a network's fixtures.
func (s *Store) Get(network string) (NetworkFixtures, bool) {
	nf, ok := s.networks[network]
	if !ok {
		return NetworkFixtures{}, false
	}
	return nf.clone(), true
}

// MustGet is Get for callers that treat a missing network as an error.
func (s *Store) MustGet(network string) (NetworkFixtures, error) {
	nf, ok := s.Get(network)
	if !ok {
		return NetworkFixtures{}, common.NewErrNetworkFixturesNotFound(network)
	}
	return nf, nil
}

// normalize brings fixtures to the canonical forms the comparators expect:
// checksummed addresses and lowercase hex for hashes and byte strings.
func normalize(nf *NetworkFixtures) error {
	if nf.Network == "" {
		return common.NewErrFixtureInvalid("", "network name is empty", nil)
	}
	invalid := func(format string, args ...interface{}) error {
		return common.NewErrFixtureInvalid(nf.Network, fmt.Sprintf(format, args...), nil)
	}

	for i := range nf.Addresses {
		a := &nf.Addresses[i]
		if !gethcommon.IsHexAddress(a.Address) {
			return invalid("addresses[%d]: %q is not an address", i, a.Address)
		}
		a.Address = common.NormalizeAddress(a.Address)
		if a.Balance != nil && !a.Balance.IsValid() {
			return invalid("addresses[%d].balance: %q is not a quantity", i, *a.Balance)
		}
		if a.Code != nil {
			code := common.NormalizeHex(*a.Code)
			a.Code = &code
		}
		if a.Storage != nil {
			storage := make(map[string]string, len(a.Storage))
			for slot, value := range a.Storage {
				if !common.Quantity(slot).IsValid() {
					return invalid("addresses[%d].storage: slot %q is not a quantity", i, slot)
				}
				storage[slot] = common.NormalizeWord(value)
			}
			a.Storage = storage
		}
	}

	for i := range nf.Blocks {
		b := &nf.Blocks[i]
		if !common.IsBlockHash(b.Hash) {
			return invalid("blocks[%d].hash: %q is not a block hash", i, b.Hash)
		}
		if _, err := b.Number.Uint64(); err != nil {
			return invalid("blocks[%d].number: %v", i, err)
		}
		b.Hash = common.NormalizeHex(b.Hash)
		b.ParentHash = common.NormalizeHex(b.ParentHash)
		b.Nonce = common.NormalizeHex(b.Nonce)
		b.Miner = common.NormalizeAddress(b.Miner)
		b.ExtraData = common.NormalizeHex(b.ExtraData)
		for j, t := range b.Transactions {
			b.Transactions[j] = TxRef(common.NormalizeHex(string(t)))
		}
	}

	for i := range nf.Transactions {
		t := &nf.Transactions[i]
		if !common.IsBlockHash(t.Hash) {
			return invalid("transactions[%d].hash: %q is not a transaction hash", i, t.Hash)
		}
		if !t.Type.IsValid() {
			return invalid("transactions[%d].type: %q is not a quantity", i, t.Type)
		}
		if t.IsFeeMarket() && (t.MaxFeePerGas == nil || t.MaxPriorityFeePerGas == nil) {
			return invalid("transactions[%d]: type 2 transaction without fee-market fields", i)
		}
		t.Hash = common.NormalizeHex(t.Hash)
		t.BlockHash = common.NormalizeHex(t.BlockHash)
		t.From = common.NormalizeAddress(t.From)
		t.To = common.NormalizeAddressPtr(t.To)
		t.Creates = common.NormalizeAddressPtr(t.Creates)
		t.Data = common.NormalizeHex(t.Data)
		t.Signature.R = common.NormalizeWord(t.Signature.R)
		t.Signature.S = common.NormalizeWord(t.Signature.S)
	}

	for i := range nf.Receipts {
		r := &nf.Receipts[i]
		if !common.IsBlockHash(r.Hash) {
			return invalid("receipts[%d].hash: %q is not a transaction hash", i, r.Hash)
		}
		r.Hash = common.NormalizeHex(r.Hash)
		r.To = common.NormalizeAddressPtr(r.To)
		r.From = common.NormalizeAddress(r.From)
		r.ContractAddress = common.NormalizeAddressPtr(r.ContractAddress)
		r.BlockHash = common.NormalizeHex(r.BlockHash)
		r.LogsBloom = common.NormalizeHex(r.LogsBloom)
		if r.Root != nil {
			root := common.NormalizeHex(*r.Root)
			r.Root = &root
		}
		for j := range r.Logs {
			l := &r.Logs[j]
			l.Address = common.NormalizeAddress(l.Address)
			l.BlockHash = common.NormalizeHex(l.BlockHash)
			l.Data = common.NormalizeHex(l.Data)
			l.TransactionHash = common.NormalizeHex(l.TransactionHash)
			for k, topic := range l.Topics {
				l.Topics[k] = common.NormalizeHex(topic)
			}
		}
	}
	return nil
}
