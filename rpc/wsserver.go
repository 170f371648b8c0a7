package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/coder/websocket"
)

// WebsocketPath is the http path on which websocket rpc connections are accepted
const WebsocketPath = "/ws"

// Gob messages of whole frames are far larger than the websocket default of 32KiB
const websocketReadLimit = 256 << 20

// WebsocketServer serves an rpc object to clients connecting over websockets
type WebsocketServer struct {
	address  string
	handler  *rpc.Server
	listener *websocketListener
	object   interface{}
	server   *http.Server
	shutdown chan bool
	tcp      net.Listener

	Logger bslogger.Logger
	Name   string
	WG     *sync.WaitGroup
}

func NewWebsocketServer(object interface{}, address string, name string) WebsocketServer {
	return WebsocketServer{
		address:  address,
		object:   object,
		shutdown: make(chan bool),
		Logger:   bslogger.NewLogger(name, bslogger.Normal, nil),
		Name:     name,
		WG:       &sync.WaitGroup{},
	}
}

func (ws *WebsocketServer) Run() error {
	ws.handler = rpc.NewServer()
	err := ws.handler.Register(ws.object)
	if err != nil {
		ws.Logger.Error("Registering object")
		return err
	}

	ws.tcp, err = net.Listen("tcp", ws.address)
	if err != nil {
		ws.Logger.Errorf("Listening at address %s", ws.address)
		return err
	}

	ws.listener = newWebsocketListener(ws.tcp.Addr().String())
	mux := http.NewServeMux()
	mux.HandleFunc(WebsocketPath, ws.websocketHandler)
	ws.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ws.WG.Add(2)
	go func() {
		defer ws.WG.Done()
		if err := ws.server.Serve(ws.tcp); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ws.Logger.Errorf("Serving http at address %s - %s", ws.Addr(), err)
		}
	}()
	go func() {
		defer ws.WG.Done()
		serve(ws.handler, ws.listener, ws.shutdown, &ws.Logger)
	}()

	ws.Logger.Infof("Running websocket server at ws://%s%s", ws.Addr(), WebsocketPath)
	return nil
}

func (ws *WebsocketServer) Addr() string {
	if ws.tcp == nil {
		return ws.address
	}
	return ws.tcp.Addr().String()
}

func (ws *WebsocketServer) Stop() error {
	if ws.server == nil {
		return errors.New("server is not running")
	}
	ws.Logger.Infof("Shutting down websocket server at address %s", ws.Addr())
	close(ws.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := ws.server.Shutdown(ctx)
	ws.listener.Close()
	ws.WG.Wait()
	return err
}

// websocketHandler upgrades the request and passes the connection on to the
// listener so the rpc server can accept it
func (ws *WebsocketServer) websocketHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		ws.Logger.Warningf("Upgrading websocket from %s - %s", r.RemoteAddr, err)
		return
	}
	c.SetReadLimit(websocketReadLimit)

	select {
	case ws.listener.ch <- c:
	case <-ws.listener.ctx.Done():
		c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// websocketListener implements net.Listener on top of upgraded websocket connections
type websocketListener struct {
	addr   wsAddr
	cancel context.CancelFunc
	ch     chan *websocket.Conn
	ctx    context.Context
}

func newWebsocketListener(addr string) *websocketListener {
	ctx, cancel := context.WithCancel(context.Background())
	return &websocketListener{
		addr:   wsAddr{addr: addr},
		cancel: cancel,
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
	}
}

func (l *websocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *websocketListener) Addr() net.Addr {
	return l.addr
}

func (l *websocketListener) Close() error {
	l.cancel()
	return nil
}

type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
