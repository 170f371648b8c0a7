package rpc

import (
	"errors"
	"testing"

	"MandelbrotExplorer/misc"
)

type Arith struct{}

type Operands struct {
	A, B int
}

func (a *Arith) Multiply(args Operands, reply *int) error {
	*reply = args.A * args.B
	return nil
}

func (a *Arith) Fill(n int, reply *[]uint) error {
	*reply = make([]uint, n)
	for i := range *reply {
		(*reply)[i] = uint(i)
	}
	return nil
}

func (a *Arith) Fail(nothing misc.Nothing, reply *misc.Nothing) error {
	return errors.New("always fails")
}

func exercise(t *testing.T, client Client) {
	t.Helper()
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	defer client.Disconnect()

	var product int
	if err := client.Call("Arith.Multiply", Operands{A: 6, B: 7}, &product); err != nil {
		t.Fatalf("Call(Multiply) = %v", err)
	}
	if product != 42 {
		t.Errorf("Multiply = %d, want 42", product)
	}

	// Large enough to span many websocket messages
	var filled []uint
	if err := client.Call("Arith.Fill", 200000, &filled); err != nil {
		t.Fatalf("Call(Fill) = %v", err)
	}
	if len(filled) != 200000 || filled[199999] != 199999 {
		t.Errorf("Fill returned %d values", len(filled))
	}

	var nothing misc.Nothing
	if err := client.Call("Arith.Fail", nothing, &nothing); err == nil || err.Error() != "always fails" {
		t.Errorf("Call(Fail) = %v, want \"always fails\"", err)
	}
}

func TestTcpServer(t *testing.T) {
	server := NewTcpServer(&Arith{}, "127.0.0.1:0", "TestTcpServer")
	if err := server.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	defer server.Stop()

	client := NewTcpClient(server.Addr(), "TestTcpClient")
	exercise(t, &client)
}

func TestWebsocketServer(t *testing.T) {
	address, err := misc.GetFreeAddress()
	if err != nil {
		t.Fatalf("GetFreeAddress() = %v", err)
	}

	server := NewWebsocketServer(&Arith{}, address, "TestWebsocketServer")
	if err := server.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	defer server.Stop()

	client := NewWebsocketClient(server.Addr(), "TestWebsocketClient")
	exercise(t, &client)
}

func TestCallWithoutConnect(t *testing.T) {
	client := NewTcpClient("127.0.0.1:1", "TestTcpClient")
	var reply int
	if err := client.Call("Arith.Multiply", Operands{A: 1, B: 2}, &reply); err == nil {
		t.Error("Call() without Connect returned no error")
	}
	if err := client.Disconnect(); err == nil {
		t.Error("Disconnect() without Connect returned no error")
	}
}

func TestStopBeforeRun(t *testing.T) {
	server := NewTcpServer(&Arith{}, "127.0.0.1:0", "TestTcpServer")
	if err := server.Stop(); err == nil {
		t.Error("Stop() before Run returned no error")
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := map[string]string{
		"localhost:51001":         "ws://localhost:51001/ws",
		"ws://example.com/ws":     "ws://example.com/ws",
		"wss://example.com:443/x": "wss://example.com:443/x",
	}
	for in, want := range tests {
		if got := websocketURL(in); got != want {
			t.Errorf("websocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
