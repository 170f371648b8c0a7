package rpc

import (
	"context"
	"fmt"
	"net/rpc"
	"strings"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/coder/websocket"
)

type WebsocketClient struct {
	client    *rpc.Client
	serverURL string

	Logger bslogger.Logger
	Name   string
}

// NewWebsocketClient creates a client for the server at host:port, or at a full
// ws:// url
func NewWebsocketClient(serverAddress string, name string) WebsocketClient {
	return WebsocketClient{
		serverURL: websocketURL(serverAddress),
		Name:      name,
		Logger:    bslogger.NewLogger(name, bslogger.Normal, nil),
	}
}

func websocketURL(address string) string {
	if strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://") {
		return address
	}
	return fmt.Sprintf("ws://%s%s", address, WebsocketPath)
}

func (wc *WebsocketClient) Connect() error {
	if wc.client != nil {
		wc.Logger.Warningf("Already connected to server at %s", wc.serverURL)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, wc.serverURL, nil)
	if err != nil {
		wc.Logger.Errorf("Connecting to server at %s", wc.serverURL)
		return err
	}
	c.SetReadLimit(websocketReadLimit)

	wc.client = rpc.NewClient(websocket.NetConn(context.Background(), c, websocket.MessageBinary))
	wc.Logger.Debugf("Connected to server at: %s", wc.serverURL)
	return nil
}

func (wc *WebsocketClient) Call(method string, request interface{}, reply interface{}) error {
	return call(wc.client, wc.serverURL, method, request, reply, &wc.Logger)
}

func (wc *WebsocketClient) Disconnect() error {
	err := disconnect(wc.client, wc.serverURL, &wc.Logger)
	wc.client = nil
	return err
}
