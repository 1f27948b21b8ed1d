package upstream

import (
	"context"
	"strings"

	"github.com/erpc/conformance/common"
	"github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const ensRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

var ensRegistries = map[string]string{
	"homestead": ensRegistryAddress,
	"goerli":    ensRegistryAddress,
	"sepolia":   ensRegistryAddress,
}

var (
	// resolver(bytes32) on the registry, name(bytes32) on a resolver.
	selectorResolver = hexutil.MustDecode("0x0178b8bf")
	selectorName     = hexutil.MustDecode("0x691f3431")

	abiStringArgs = func() abi.Arguments {
		t, err := abi.NewType("string", "", nil)
		if err != nil {
			panic(err)
		}
		return abi.Arguments{{Type: t}}
	}()
)

// namehash implements the ENS name hashing scheme.
func namehash(name string) gethcommon.Hash {
	var node gethcommon.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = crypto.Keccak256Hash(node.Bytes(), crypto.Keccak256([]byte(labels[i])))
	}
	return node
}

func reverseNode(address string) gethcommon.Hash {
	addr := strings.ToLower(strings.TrimPrefix(strings.ToLower(address), "0x"))
	return namehash(addr + ".addr.reverse")
}

// LookupAddress resolves the primary ENS name of address through the
// registry's reverse records. It returns nil when no name is set.
func (p *JsonRpcProvider) LookupAddress(ctx context.Context, address string) (*string, error) {
	if p.ensRegistry == nil {
		return nil, common.NewErrUnsupportedOperation(string(common.OperationLookupAddress), p.id)
	}
	node := reverseNode(address)

	resolverWord, err := p.ethCall(ctx, *p.ensRegistry, selectorResolver, node)
	if err != nil {
		return nil, err
	}
	if len(resolverWord) < 32 {
		return nil, nil
	}
	resolver := gethcommon.BytesToAddress(resolverWord[12:32])
	if resolver == (gethcommon.Address{}) {
		return nil, nil
	}

	nameData, err := p.ethCall(ctx, resolver.Hex(), selectorName, node)
	if err != nil {
		return nil, err
	}
	if len(nameData) == 0 {
		return nil, nil
	}
	values, err := abiStringArgs.Unpack(nameData)
	if err != nil {
		return nil, common.NewErrMalformedResponse("eth_call", err)
	}
	name, _ := values[0].(string)
	if name == "" {
		return nil, nil
	}
	return &name, nil
}

func (p *JsonRpcProvider) ethCall(ctx context.Context, to string, selector []byte, node gethcommon.Hash) ([]byte, error) {
	data := append(append([]byte{}, selector...), node.Bytes()...)
	var out string
	found, err := p.call(ctx, common.OperationLookupAddress, "eth_call", []interface{}{
		map[string]string{"to": to, "data": hexutil.Encode(data)},
		"latest",
	}, &out)
	if err != nil || !found {
		return nil, err
	}
	decoded, err := hexutil.Decode(out)
	if err != nil {
		return nil, common.NewErrMalformedResponse("eth_call", err)
	}
	return decoded, nil
}
