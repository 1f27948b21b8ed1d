package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/util"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 30 * time.Second
	wsMaxMessageSize = 16 * 1024 * 1024
)

var errWsClosed = errors.New("websocket connection closed")

// WebsocketJsonRpcClient multiplexes JSON-RPC calls over a single websocket
// connection, matching responses to callers by request id. The connection is
// dialed lazily and re-dialed after a disconnect.
type WebsocketJsonRpcClient struct {
	endpoint string
	headers  http.Header
	logger   *zerolog.Logger

	connMu  sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]chan *JsonRpcResponse

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ JsonRpcClient = (*WebsocketJsonRpcClient)(nil)

func NewWebsocketJsonRpcClient(appCtx context.Context, logger *zerolog.Logger, endpoint string, cfg *common.JsonRpcConfig) *WebsocketJsonRpcClient {
	lg := logger.With().Str("component", "wsJsonRpcClient").Str("endpoint", util.RedactEndpoint(endpoint)).Logger()
	ctx, cancel := context.WithCancel(appCtx)

	headers := http.Header{}
	if cfg != nil {
		for k, v := range cfg.Headers {
			headers.Set(k, v)
		}
	}

	return &WebsocketJsonRpcClient{
		endpoint: endpoint,
		headers:  headers,
		logger:   &lg,
		pending:  make(map[string]chan *JsonRpcResponse),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *WebsocketJsonRpcClient) connect(ctx context.Context) (*websocket.Conn, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	if c.ctx.Err() != nil {
		return nil, errWsClosed
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, c.endpoint, c.headers)
	if err != nil {
		if resp != nil {
			if e := ExtractJsonRpcError(resp.StatusCode, nil); e != nil {
				return nil, e
			}
		}
		c.logger.Warn().Err(err).Msg("failed to connect to websocket endpoint")
		return nil, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.endpoint), err)
	}

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	c.conn = conn
	c.logger.Debug().Msg("connected to websocket endpoint")

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.pingLoop(conn)

	return conn, nil
}

func (c *WebsocketJsonRpcClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) (bool, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return false, err
	}

	req := newJsonRpcRequest(method, params)
	id := strconv.FormatInt(req.ID, 10)
	respCh := make(chan *JsonRpcResponse, 1)

	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	payload, err := sonic.Marshal(req)
	if err != nil {
		return false, err
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.dropConn(conn)
		return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.endpoint), err)
	}

	select {
	case <-ctx.Done():
		return false, common.NewErrEndpointRequestTimeout(ctx.Err())
	case jr, ok := <-respCh:
		if !ok || jr == nil {
			return false, common.NewErrEndpointTransportFailure(util.RedactEndpoint(c.endpoint), errWsClosed)
		}
		if e := ExtractJsonRpcError(0, jr); e != nil {
			return false, e
		}
		return decodeResult(method, jr, result)
	}
}

func (c *WebsocketJsonRpcClient) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	defer c.dropConn(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var jr JsonRpcResponse
		if err := sonic.Unmarshal(data, &jr); err != nil {
			c.logger.Warn().Err(err).Msg("failed to parse websocket message")
			continue
		}
		id := string(jr.ID)
		if unquoted, err := strconv.Unquote(id); err == nil {
			id = unquoted
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[id]
		c.pendingMu.Unlock()
		if !ok {
			c.logger.Debug().Str("id", id).Msg("dropping websocket message without a pending request")
			continue
		}
		select {
		case ch <- &jr:
		default:
		}
	}
}

func (c *WebsocketJsonRpcClient) pingLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			current := c.conn
			c.connMu.Unlock()
			if current != conn {
				return
			}

			c.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Warn().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// dropConn forgets conn so the next call re-dials, and fails in-flight calls.
func (c *WebsocketJsonRpcClient) dropConn(conn *websocket.Conn) {
	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.connMu.Unlock()
	_ = conn.Close()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		select {
		case ch <- nil:
		default:
		}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
}

func (c *WebsocketJsonRpcClient) Close() error {
	c.cancel()

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = conn.Close()
	}

	c.wg.Wait()
	return nil
}

func (c *WebsocketJsonRpcClient) String() string {
	return fmt.Sprintf("ws(%s)", util.RedactEndpoint(c.endpoint))
}
