package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

type ClientType string

const (
	ClientTypeHttpJsonRpc      ClientType = "HttpJsonRpc"
	ClientTypeWebsocketJsonRpc ClientType = "WebsocketJsonRpc"
)

// DetectClientType picks the transport from the endpoint scheme.
func DetectClientType(endpoint string) (ClientType, *url.URL, error) {
	parsedUrl, err := url.Parse(endpoint)
	if err != nil {
		return "", nil, common.NewErrInvalidConfig(fmt.Sprintf("invalid endpoint url: %v", err))
	}
	switch strings.ToLower(parsedUrl.Scheme) {
	case "http", "https":
		return ClientTypeHttpJsonRpc, parsedUrl, nil
	case "ws", "wss":
		return ClientTypeWebsocketJsonRpc, parsedUrl, nil
	}
	return "", nil, common.NewErrInvalidConfig(fmt.Sprintf("unsupported endpoint scheme %q", parsedUrl.Scheme))
}

// NewJsonRpcClient creates the client matching the endpoint's scheme.
func NewJsonRpcClient(appCtx context.Context, logger *zerolog.Logger, endpoint string, cfg *common.JsonRpcConfig) (JsonRpcClient, error) {
	clientType, parsedUrl, err := DetectClientType(endpoint)
	if err != nil {
		return nil, err
	}
	switch clientType {
	case ClientTypeWebsocketJsonRpc:
		return NewWebsocketJsonRpcClient(appCtx, logger, endpoint, cfg), nil
	default:
		return NewHttpJsonRpcClient(logger, parsedUrl, cfg)
	}
}
