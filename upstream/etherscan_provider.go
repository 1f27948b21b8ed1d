package upstream

import (
	"context"

	"github.com/erpc/conformance/clients"
	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

// EtherscanProvider serves the conformance operations from the explorer's
// proxy API. The explorer cannot fetch blocks by hash nor resolve names.
type EtherscanProvider struct {
	*JsonRpcProvider
}

var _ common.Provider = (*EtherscanProvider)(nil)

func NewEtherscanProvider(logger *zerolog.Logger, id, network string, client *clients.EtherscanClient) *EtherscanProvider {
	p := NewJsonRpcProvider(logger, id, network, client)
	p.ensRegistry = nil
	return &EtherscanProvider{JsonRpcProvider: p}
}

func (p *EtherscanProvider) GetBlock(ctx context.Context, tag common.BlockTag) (*common.Block, error) {
	if tag.IsHash() {
		return nil, common.NewErrUnsupportedOperation(string(common.OperationGetBlockByHash), p.id)
	}
	return p.JsonRpcProvider.GetBlock(ctx, tag)
}

func (p *EtherscanProvider) LookupAddress(ctx context.Context, address string) (*string, error) {
	return nil, common.NewErrUnsupportedOperation(string(common.OperationLookupAddress), p.id)
}
