package clients

import (
	"bytes"
	"context"
	"encoding/hex"
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
	"github.com/golang-jwt/jwt/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/propagation"
)

const maxResponseSize = 32 * 1024 * 1024

var gzipReaders = util.NewGzipReaderPool()

type HttpJsonRpcClient struct {
	Url     *url.URL
	headers map[string]string

	logger     *zerolog.Logger
	httpClient *http.Client

	enableGzip bool
	jwtSecret  []byte
}

var _ JsonRpcClient = (*HttpJsonRpcClient)(nil)

func NewHttpJsonRpcClient(logger *zerolog.Logger, parsedUrl *url.URL, cfg *common.JsonRpcConfig) (*HttpJsonRpcClient, error) {
	lg := logger.With().Str("component", "httpJsonRpcClient").Str("host", parsedUrl.Host).Logger()
	client := &HttpJsonRpcClient{
		Url:    parsedUrl,
		logger: &lg,
	}

	timeout := common.DefaultJsonRpcTimeout
	if cfg != nil {
		if cfg.EnableGzip != nil {
			client.enableGzip = *cfg.EnableGzip
		}
		if cfg.Headers != nil {
			client.headers = cfg.Headers
		}
		if cfg.JwtSecret != "" {
			secret, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(cfg.JwtSecret), "0x"))
			if err != nil {
				return nil, common.NewErrInvalidConfig(fmt.Sprintf("jwtSecret must be hex encoded: %v", err))
			}
			client.jwtSecret = secret
		}
		timeout = cfg.Timeout.WithDefault(timeout)
	}

	if util.IsTest() {
		client.httpClient = &http.Client{}
	} else {
		client.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return client, nil
}

func (c *HttpJsonRpcClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) (bool, error) {
	jrReq := newJsonRpcRequest(method, params)
	requestBody, err := sonic.Marshal(jrReq)
	if err != nil {
		return false, err
	}

	reqStartTime := time.Now()
	httpReq, err := c.prepareRequest(ctx, requestBody)
	if err != nil {
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.Url.String()), err)
	}
	c.logger.Debug().Str("method", method).RawJSON("request", requestBody).Msg("sending json rpc POST request")

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

	body, err := c.readResponseBody(resp)
	if err != nil {
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.Url.String()), err)
	}
	c.logger.Trace().Int("statusCode", resp.StatusCode).Dur("duration", time.Since(reqStartTime)).Str("body", string(body)).Msg("received json rpc response")

	jr := &JsonRpcResponse{}
	if perr := sonic.Unmarshal(body, jr); perr != nil {
		if e := ExtractJsonRpcError(resp.StatusCode, nil); e != nil {
			return false, e
		}
		return false, common.NewErrMalformedResponse(method, perr)
	}
	if e := ExtractJsonRpcError(resp.StatusCode, jr); e != nil {
		return false, e
	}

	return decodeResult(method, jr, result)
}

func (c *HttpJsonRpcClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HttpJsonRpcClient) prepareRequest(ctx context.Context, body []byte) (*http.Request, error) {
	var bodyReader io.Reader = bytes.NewReader(body)

	if c.enableGzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(body); err != nil {
			return nil, err
		}
		if err := gw.Close(); err != nil {
			return nil, err
		}
		bodyReader = &buf
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Url.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept-Encoding", "gzip")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", fmt.Sprintf("conformance/%s", common.Version))
	if c.enableGzip {
		httpReq.Header.Set("Content-Encoding", "gzip")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	if len(c.jwtSecret) > 0 {
		token, err := c.signToken()
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

// signToken issues a short-lived HS256 token carrying only an iat claim, as
// authenticated node endpoints expect.
func (c *HttpJsonRpcClient) signToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
	})
	return token.SignedString(c.jwtSecret)
}

func (c *HttpJsonRpcClient) readResponseBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzipReaders.GetReset(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("cannot create gzip reader: %w", err)
		}
		rc := gzipReaders.WrapGzipReader(zr, nil)
		defer rc.Close()
		reader = rc
	}
	return io.ReadAll(io.LimitReader(reader, maxResponseSize))
}
