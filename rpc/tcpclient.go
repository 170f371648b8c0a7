package rpc

import (
	"errors"
	"fmt"
	"net/rpc"

	"github.com/BrugadaSyndrome/bslogger"
)

// Client is a connection to an rpc server over any transport
type Client interface {
	Connect() error
	Call(method string, request interface{}, reply interface{}) error
	Disconnect() error
}

type TcpClient struct {
	client        *rpc.Client
	serverAddress string

	Logger bslogger.Logger
	Name   string
}

func NewTcpClient(serverAddress string, name string) TcpClient {
	return TcpClient{
		serverAddress: serverAddress,
		Name:          name,
		Logger:        bslogger.NewLogger(name, bslogger.Normal, nil),
	}
}

func (tc *TcpClient) Connect() error {
	if tc.client != nil {
		tc.Logger.Warningf("Already connected to server at address %s", tc.serverAddress)
		return nil
	}

	var err error
	tc.client, err = rpc.Dial("tcp", tc.serverAddress)
	if err != nil {
		tc.Logger.Errorf("Connecting to server at address %s", tc.serverAddress)
		return err
	}
	tc.Logger.Debugf("Connected to server at: %s", tc.serverAddress)
	return nil
}

func (tc *TcpClient) Call(method string, request interface{}, reply interface{}) error {
	return call(tc.client, tc.serverAddress, method, request, reply, &tc.Logger)
}

func (tc *TcpClient) Disconnect() error {
	err := disconnect(tc.client, tc.serverAddress, &tc.Logger)
	tc.client = nil
	return err
}

func call(client *rpc.Client, serverAddress string, method string, request interface{}, reply interface{}, logger *bslogger.Logger) error {
	if client == nil {
		message := fmt.Sprintf("Not connected to server at address %s : method %s", serverAddress, method)
		logger.Error(message)
		return errors.New(message)
	}

	err := client.Call(method, request, reply)
	if err != nil {
		logger.Debugf("Calling server at address: %s, method: %s - %s", serverAddress, method, err)
		return err
	}
	logger.Debugf("Calling server [%s] %s", serverAddress, method)
	return nil
}

func disconnect(client *rpc.Client, serverAddress string, logger *bslogger.Logger) error {
	if client == nil {
		message := fmt.Sprintf("Already disconnected from server at address %s", serverAddress)
		logger.Warning(message)
		return errors.New(message)
	}

	err := client.Close()
	if err != nil {
		logger.Errorf("Disconnecting from server at address %s", serverAddress)
		return err
	}
	logger.Debugf("Disconnected from server at %s", serverAddress)
	return nil
}
