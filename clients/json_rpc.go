package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/common"
)

const (
	JsonRpcErrorMethodNotFound   = -32601
	JsonRpcErrorLimitExceeded    = -32005
	JsonRpcErrorServerSideCustom = -32000
)

// JsonRpcClient sends single JSON-RPC calls to one endpoint.
type JsonRpcClient interface {
	// Call decodes the result into result. A JSON null result leaves result
	// untouched and reports found=false.
	Call(ctx context.Context, method string, params []interface{}, result interface{}) (found bool, err error)
	Close() error
}

type JsonRpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type JsonRpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type JsonRpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *JsonRpcError   `json:"error,omitempty"`
}

var requestIds atomic.Int64

func newJsonRpcRequest(method string, params []interface{}) *JsonRpcRequest {
	if params == nil {
		params = []interface{}{}
	}
	return &JsonRpcRequest{
		JSONRPC: "2.0",
		ID:      requestIds.Add(1),
		Method:  method,
		Params:  params,
	}
}

// decodeResult unmarshals a successful response into out.
func decodeResult(method string, jr *JsonRpcResponse, out interface{}) (bool, error) {
	if len(jr.Result) == 0 || string(jr.Result) == "null" {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := sonic.Unmarshal(jr.Result, out); err != nil {
		return true, common.NewErrMalformedResponse(method, err)
	}
	return true, nil
}

// ExtractJsonRpcError classifies a response that carries an error, either in
// the HTTP status or in the JSON-RPC error object. statusCode is 0 for
// transports without one.
func ExtractJsonRpcError(statusCode int, jr *JsonRpcResponse) error {
	if jr != nil && jr.Error != nil {
		code := jr.Error.Code
		msg := jr.Error.Message
		cause := common.NewErrJsonRpcException(code, msg, jr.Error.Data)
		lower := strings.ToLower(msg)

		switch {
		case code == JsonRpcErrorLimitExceeded,
			statusCode == http.StatusTooManyRequests,
			strings.Contains(lower, "rate limit"),
			strings.Contains(lower, "too many requests"),
			strings.Contains(lower, "exceeded") && strings.Contains(lower, "capacity"):
			return common.NewErrEndpointCapacityExceeded(cause)
		case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden,
			strings.Contains(lower, "unauthorized"),
			strings.Contains(lower, "invalid api key"):
			return common.NewErrEndpointUnauthorized(cause)
		case statusCode >= 500:
			return common.NewErrEndpointServerSideException(cause, map[string]interface{}{
				"statusCode": statusCode,
			})
		}
		return cause
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return common.NewErrEndpointCapacityExceeded(common.NewErrJsonRpcException(0, http.StatusText(statusCode), nil))
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return common.NewErrEndpointUnauthorized(common.NewErrJsonRpcException(0, http.StatusText(statusCode), nil))
	case statusCode >= 500:
		return common.NewErrEndpointServerSideException(nil, map[string]interface{}{
			"statusCode": statusCode,
		})
	}
	return nil
}

// IsMethodNotFound reports whether the endpoint does not implement the method.
func IsMethodNotFound(err error) bool {
	var jre *common.ErrJsonRpcException
	if !errors.As(err, &jre) {
		return false
	}
	return jre.RpcCode == JsonRpcErrorMethodNotFound
}
