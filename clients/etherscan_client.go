package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/util"
	"github.com/rs/zerolog"
)

// EtherscanClient speaks the explorer's REST API but exposes it as JSON-RPC
// calls. Methods without an explorer equivalent fail with -32601 so callers
// treat them like any node that lacks the method.
type EtherscanClient struct {
	Url *url.URL

	apiKey     string
	logger     *zerolog.Logger
	httpClient *http.Client
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   *JsonRpcError   `json:"error,omitempty"`
}

func NewEtherscanClient(logger *zerolog.Logger, baseUrl *url.URL, apiKey string, cfg *common.JsonRpcConfig) *EtherscanClient {
	timeout := common.DefaultJsonRpcTimeout
	if cfg != nil {
		timeout = cfg.Timeout.WithDefault(timeout)
	}
	lg := logger.With().Str("client", "etherscan").Str("host", baseUrl.Host).Logger()
	client := &EtherscanClient{
		Url:    baseUrl,
		apiKey: apiKey,
		logger: &lg,
	}
	if util.IsTest() {
		client.httpClient = &http.Client{}
	} else {
		client.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return client
}

// etherscanQuery maps a JSON-RPC call onto the explorer's module/action
// query parameters.
func etherscanQuery(method string, params []interface{}) (url.Values, error) {
	arg := func(i int) string {
		if i < len(params) {
			if s, ok := params[i].(string); ok {
				return s
			}
			if b, ok := params[i].(bool); ok {
				if b {
					return "true"
				}
				return "false"
			}
		}
		return ""
	}
	q := url.Values{}
	q.Set("module", "proxy")
	q.Set("action", method)
	switch method {
	case "eth_getBalance":
		q.Set("module", "account")
		q.Set("action", "balance")
		q.Set("address", arg(0))
		q.Set("tag", arg(1))
	case "eth_getCode":
		q.Set("address", arg(0))
		q.Set("tag", arg(1))
	case "eth_getStorageAt":
		q.Set("address", arg(0))
		q.Set("position", arg(1))
		q.Set("tag", arg(2))
	case "eth_getBlockByNumber":
		q.Set("tag", arg(0))
		q.Set("boolean", arg(1))
	case "eth_getTransactionByHash", "eth_getTransactionReceipt":
		q.Set("txhash", arg(0))
	case "eth_blockNumber":
	default:
		return nil, common.NewErrJsonRpcException(
			JsonRpcErrorMethodNotFound,
			fmt.Sprintf("the method %s is not available on the explorer api", method),
			nil,
		)
	}
	return q, nil
}

func (c *EtherscanClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) (bool, error) {
	q, err := etherscanQuery(method, params)
	if err != nil {
		return false, err
	}
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u := *c.Url
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.Url.String()), err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", fmt.Sprintf("conformance/%s", common.Version))

	c.logger.Debug().Str("method", method).Str("module", q.Get("module")).Str("action", q.Get("action")).Msg("sending explorer api request")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			err = cause
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return false, common.NewErrEndpointRequestTimeout(err)
		}
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.Url.String()), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.Url.String()), err)
	}

	er := &etherscanResponse{}
	if perr := sonic.Unmarshal(body, er); perr != nil {
		if e := ExtractJsonRpcError(resp.StatusCode, nil); e != nil {
			return false, e
		}
		return false, common.NewErrMalformedResponse(method, perr)
	}
	if er.Error != nil {
		return false, ExtractJsonRpcError(resp.StatusCode, &JsonRpcResponse{Error: er.Error})
	}
	if er.Status == "0" {
		// Non-proxy actions report failures as status 0 with the reason in result.
		var reason string
		if sonic.Unmarshal(er.Result, &reason) != nil || reason == "" {
			reason = er.Message
		}
		return false, ExtractJsonRpcError(resp.StatusCode, &JsonRpcResponse{
			Error: &JsonRpcError{Code: JsonRpcErrorServerSideCustom, Message: reason},
		})
	}
	if e := ExtractJsonRpcError(resp.StatusCode, nil); e != nil {
		return false, e
	}
	if er.Status == "" && isExplorerNotice(er.Result) {
		// Proxy actions put rate-limit notices in result as a plain string.
		var notice string
		_ = sonic.Unmarshal(er.Result, &notice)
		return false, ExtractJsonRpcError(resp.StatusCode, &JsonRpcResponse{
			Error: &JsonRpcError{Code: JsonRpcErrorServerSideCustom, Message: notice},
		})
	}

	return decodeResult(method, &JsonRpcResponse{Result: er.Result}, result)
}

func isExplorerNotice(raw json.RawMessage) bool {
	s := strings.ToLower(string(raw))
	return strings.HasPrefix(s, `"max rate limit`) || strings.HasPrefix(s, `"invalid api key`)
}

func (c *EtherscanClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
