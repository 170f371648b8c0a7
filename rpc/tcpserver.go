package rpc

import (
	"errors"
	"net"
	"net/rpc"
	"sync"

	"github.com/BrugadaSyndrome/bslogger"
)

type TcpServer struct {
	address  string
	handler  *rpc.Server
	listener net.Listener
	object   interface{}
	shutdown chan bool

	Logger bslogger.Logger
	Name   string
	WG     *sync.WaitGroup
}

func NewTcpServer(object interface{}, address string, name string) TcpServer {
	return TcpServer{
		address:  address,
		object:   object,
		shutdown: make(chan bool),
		Logger:   bslogger.NewLogger(name, bslogger.Normal, nil),
		Name:     name,
		WG:       &sync.WaitGroup{},
	}
}

func (ts *TcpServer) Run() error {
	ts.handler = rpc.NewServer()
	err := ts.handler.Register(ts.object)
	if err != nil {
		ts.Logger.Error("Registering object")
		return err
	}

	ts.listener, err = net.Listen("tcp", ts.address)
	if err != nil {
		ts.Logger.Errorf("Listening at address %s", ts.address)
		return err
	}

	ts.WG.Add(1)
	go func() {
		defer ts.WG.Done()
		serve(ts.handler, ts.listener, ts.shutdown, &ts.Logger)
	}()

	ts.Logger.Infof("Running server at address %s", ts.Addr())
	return nil
}

// Addr returns the address the server listens on, which differs from the
// configured one when an ephemeral port was requested
func (ts *TcpServer) Addr() string {
	if ts.listener == nil {
		return ts.address
	}
	return ts.listener.Addr().String()
}

func (ts *TcpServer) Stop() error {
	if ts.listener == nil {
		return errors.New("server is not running")
	}
	ts.Logger.Infof("Shutting down server at address %s", ts.Addr())
	close(ts.shutdown)
	err := ts.listener.Close()
	ts.WG.Wait()
	return err
}

// serve accepts connections from listener and hands them to handler until
// shutdown is closed
func serve(handler *rpc.Server, listener net.Listener, shutdown chan bool, logger *bslogger.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-shutdown:
				// Server has been given the signal to shutdown
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warningf("Accepting connection at address %s - %s", listener.Addr(), err)
			continue
		}

		logger.Infof("Server opened connection to client at address %s", conn.RemoteAddr())
		go handler.ServeConn(conn)
	}
}
