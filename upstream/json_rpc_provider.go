package upstream

import (
	"context"
	"errors"

	"github.com/erpc/conformance/clients"
	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

// JsonRpcProvider answers the conformance operations from any endpoint that
// speaks the eth_* JSON-RPC methods.
type JsonRpcProvider struct {
	id      string
	network string
	logger  *zerolog.Logger
	client  clients.JsonRpcClient

	// ensRegistry is nil on networks without ENS.
	ensRegistry *string
}

var _ common.Provider = (*JsonRpcProvider)(nil)

func NewJsonRpcProvider(logger *zerolog.Logger, id, network string, client clients.JsonRpcClient) *JsonRpcProvider {
	lg := logger.With().Str("provider", id).Str("network", network).Logger()
	p := &JsonRpcProvider{
		id:      id,
		network: network,
		logger:  &lg,
		client:  client,
	}
	if registry, ok := ensRegistries[network]; ok {
		p.ensRegistry = &registry
	}
	return p
}

func (p *JsonRpcProvider) Name() string {
	return p.id
}

func (p *JsonRpcProvider) Network() string {
	return p.network
}

func (p *JsonRpcProvider) Close() error {
	return p.client.Close()
}

// call forwards to the client and turns "method not found" into the
// unsupported-operation error for op.
func (p *JsonRpcProvider) call(ctx context.Context, op common.Operation, method string, params []interface{}, out interface{}) (bool, error) {
	found, err := p.client.Call(ctx, method, params, out)
	if err != nil {
		if clients.IsMethodNotFound(err) {
			return false, common.NewErrUnsupportedOperation(string(op), p.id)
		}
		p.logger.Debug().Err(err).Str("method", method).Msg("provider call failed")
		return false, err
	}
	return found, nil
}

func (p *JsonRpcProvider) GetBalance(ctx context.Context, address string) (common.Quantity, error) {
	var balance common.Quantity
	found, err := p.call(ctx, common.OperationGetBalance, "eth_getBalance", []interface{}{address, "latest"}, &balance)
	if err != nil {
		return "", err
	}
	if !found {
		return "", common.NewErrMalformedResponse("eth_getBalance", errors.New("null balance"))
	}
	return balance, nil
}

func (p *JsonRpcProvider) GetCode(ctx context.Context, address string) (string, error) {
	var code string
	found, err := p.call(ctx, common.OperationGetCode, "eth_getCode", []interface{}{address, "latest"}, &code)
	if err != nil {
		return "", err
	}
	if !found {
		return "", common.NewErrMalformedResponse("eth_getCode", errors.New("null code"))
	}
	return common.NormalizeHex(code), nil
}

func (p *JsonRpcProvider) GetStorageAt(ctx context.Context, address string, slot string) (string, error) {
	position, err := common.Quantity(slot).Uint256()
	if err != nil {
		return "", common.NewErrMalformedResponse("eth_getStorageAt", err)
	}
	var value string
	found, err := p.call(ctx, common.OperationGetStorageAt, "eth_getStorageAt", []interface{}{address, position.Hex(), "latest"}, &value)
	if err != nil {
		return "", err
	}
	if !found {
		return "", common.NewErrMalformedResponse("eth_getStorageAt", errors.New("null storage value"))
	}
	return common.NormalizeWord(value), nil
}

// GetBlock returns nil without error when the node does not know the block.
func (p *JsonRpcProvider) GetBlock(ctx context.Context, tag common.BlockTag) (*common.Block, error) {
	var (
		method string
		params []interface{}
	)
	if tag.IsHash() {
		method = "eth_getBlockByHash"
		params = []interface{}{common.NormalizeHex(string(tag)), false}
	} else {
		number, err := tag.HexNumber()
		if err != nil {
			return nil, common.NewErrMalformedResponse("eth_getBlockByNumber", err)
		}
		method = "eth_getBlockByNumber"
		params = []interface{}{number, false}
	}

	var raw rpcBlock
	found, err := p.call(ctx, tag.Operation(), method, params, &raw)
	if err != nil || !found {
		return nil, err
	}
	return raw.toBlock(), nil
}

func (p *JsonRpcProvider) GetTransaction(ctx context.Context, hash string) (*common.Transaction, error) {
	var raw rpcTransaction
	found, err := p.call(ctx, common.OperationGetTransaction, "eth_getTransactionByHash", []interface{}{hash}, &raw)
	if err != nil || !found {
		return nil, err
	}
	return raw.toTransaction(), nil
}

func (p *JsonRpcProvider) GetTransactionReceipt(ctx context.Context, hash string) (*common.Receipt, error) {
	var raw rpcReceipt
	found, err := p.call(ctx, common.OperationGetTransactionReceipt, "eth_getTransactionReceipt", []interface{}{hash}, &raw)
	if err != nil || !found {
		return nil, err
	}
	receipt := raw.toReceipt()
	if raw.EffectiveGasPrice == nil && raw.GasPrice == nil {
		// Older nodes omit the price on receipts; it is the transaction's.
		tx, err := p.GetTransaction(ctx, hash)
		if err != nil {
			return nil, err
		}
		if tx != nil {
			receipt.GasPrice = tx.GasPrice
		}
	}
	return receipt, nil
}
