// Command client drives a running viewer over rpc: it sends exploration events
// and prints or saves the resulting frame.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"MandelbrotExplorer/coordinator"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/rpc"
)

var (
	address      string
	useWebsocket bool
	verbosity    string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "client",
		Short:        "Explore the Mandelbrot set through a running viewer",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&address, "address", "", "Address of the viewer (default localhost:51000, or localhost:51001 with --websocket)")
	root.PersistentFlags().BoolVar(&useWebsocket, "websocket", false, "Connect over websocket instead of tcp")
	root.PersistentFlags().StringVar(&verbosity, "verbosity", "Minimal", "Log verbosity: Minimal, Normal or All")

	root.AddCommand(
		newZoomCommand(),
		newCenterCommand(),
		newResetCommand(),
		newIterationsCommand(),
		newHistogramCommand(),
		newSchemeCommand(),
		newInfoCommand(),
		newStatusCommand(),
		newResizeCommand(),
		newShowCommand(),
		newColorsCommand(),
		newSaveCommand(),
	)
	return root
}

// connect opens a client for the configured transport. The caller disconnects it.
func connect() (rpc.Client, error) {
	logger := misc.NewLogger("Client", verbosity, nil)

	var client rpc.Client
	if useWebsocket {
		addr := address
		if addr == "" {
			addr = "localhost:51001"
		}
		wc := rpc.NewWebsocketClient(addr, "Client")
		wc.Logger = logger
		client = &wc
	} else {
		addr := address
		if addr == "" {
			addr = "localhost:51000"
		}
		tc := rpc.NewTcpClient(addr, "Client")
		tc.Logger = logger
		client = &tc
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// call connects, runs one rpc method and disconnects
func call(method string, request interface{}, reply interface{}) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Disconnect()
	return client.Call("Coordinator."+method, request, reply)
}

// callEvent runs an rpc method that answers with a FrameInfo and prints it
func callEvent(cmd *cobra.Command, method string, request interface{}) error {
	var info coordinator.FrameInfo
	if err := call(method, request, &info); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	if info.Point != (coordinator.PointInfo{}) {
		p := info.Point
		fmt.Fprintf(cmd.OutOrStdout(), "Pixel (%d, %d) = %g%+gi, iterations %d, equalized %d\n",
			p.X, p.Y, p.Re, p.Im, p.Iterations, p.IterationsEqualized)
	}
	return nil
}
