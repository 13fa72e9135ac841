package feed

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WebSocket subscribes to the visual-board feed. It is the only component
// that knows about transport timing: reconnects, pings and delivery order
// stop at this boundary.
type WebSocket struct {
	wsURL string

	conn   *websocket.Conn
	state  State
	stateM sync.RWMutex

	notifCbs []Callback
	stateCbs []StateCallback
	cbM      sync.RWMutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *WebSocket {
	return &WebSocket{
		wsURL:                wsURL,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
}

func (ws *WebSocket) Connect(ctx context.Context) error {
	ws.stateM.Lock()
	if ws.state == StateConnected || ws.state == StateConnecting {
		ws.stateM.Unlock()
		return nil
	}
	ws.stateM.Unlock()

	ws.rootCtx, ws.rootCancel = context.WithCancel(context.Background())
	ws.setState(StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		ws.setState(StateFailed)
		ws.scheduleReconnect()
		return err
	}

	ws.conn = conn
	ws.setState(StateConnected)

	ws.wg.Add(2)
	go ws.listen()
	go ws.pingLoop()
	return nil
}

func (ws *WebSocket) listen() {
	defer ws.wg.Done()
	for {
		select {
		case <-ws.stopCh:
			return
		default:
		}

		if ws.conn == nil {
			return
		}
		var n Notification
		if err := wsjson.Read(ws.rootCtx, ws.conn, &n); err != nil {
			if ws.isStopping() {
				return
			}
			ws.setState(StateDisconnected)
			_ = ws.closeConn(websocket.StatusGoingAway, "reconnect")
			ws.scheduleReconnect()
			return
		}

		ws.cbM.RLock()
		callbacks := make([]Callback, len(ws.notifCbs))
		copy(callbacks, ws.notifCbs)
		ws.cbM.RUnlock()
		for _, cb := range callbacks {
			if cb != nil {
				cb(&n)
			}
		}
	}
}

func (ws *WebSocket) pingLoop() {
	defer ws.wg.Done()
	t := time.NewTicker(ws.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ws.stopCh:
			return
		case <-t.C:
			if ws.conn == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(ws.rootCtx, 3*time.Second)
			err := ws.conn.Ping(ctx)
			cancel()
			if err != nil {
				failures++
				if failures >= 2 {
					if ws.isStopping() {
						return
					}
					ws.setState(StateDisconnected)
					_ = ws.closeConn(websocket.StatusGoingAway, "ping failure")
					ws.scheduleReconnect()
					failures = 0
				}
				continue
			}
			failures = 0
		}
	}
}

func (ws *WebSocket) scheduleReconnect() {
	if ws.maxReconnectAttempts <= 0 {
		return
	}
	ws.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= ws.maxReconnectAttempts; attempt++ {
			select {
			case <-ws.stopCh:
				return
			case <-time.After(ws.backoff(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(ws.rootCtx, 10*time.Second)
			conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
				CompressionMode: websocket.CompressionNoContextTakeover,
			})
			cancel()
			if err != nil {
				continue
			}

			ws.conn = conn
			ws.setState(StateConnected)

			ws.wg.Add(2)
			go ws.listen()
			go ws.pingLoop()
			return
		}
		ws.setState(StateFailed)
	}()
}

func (ws *WebSocket) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * ws.reconnectDelay
}

// OnNotification registers a raw-notification callback.
func (ws *WebSocket) OnNotification(cb Callback) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.notifCbs = append(ws.notifCbs, cb)
}

func (ws *WebSocket) OnStateChange(cb StateCallback) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.stateCbs = append(ws.stateCbs, cb)
}

func (ws *WebSocket) setState(state State) {
	ws.stateM.Lock()
	ws.state = state
	ws.stateM.Unlock()

	ws.cbM.RLock()
	callbacks := make([]StateCallback, len(ws.stateCbs))
	copy(callbacks, ws.stateCbs)
	ws.cbM.RUnlock()
	for _, cb := range callbacks {
		if cb != nil {
			cb(state)
		}
	}
}

func (ws *WebSocket) Close(ctx context.Context) error {
	ws.stopOnce.Do(func() { close(ws.stopCh) })
	_ = ws.closeConn(websocket.StatusNormalClosure, "close")

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if ws.rootCancel != nil {
			ws.rootCancel()
		}
		return nil
	}
}

func (ws *WebSocket) closeConn(code websocket.StatusCode, reason string) error {
	if ws.conn == nil {
		return nil
	}
	defer func() { ws.conn = nil }()
	return ws.conn.Close(code, reason)
}

func (ws *WebSocket) isStopping() bool {
	select {
	case <-ws.stopCh:
		return true
	default:
		return false
	}
}
