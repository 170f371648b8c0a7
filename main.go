package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"MandelbrotExplorer/coordinator"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/rpc"
)

func main() {
	parseArguments()

	logger := misc.NewLogger("Viewer", "Normal", nil)

	settings, err := coordinator.NewSettings(settingsFile)
	misc.CheckError(err, logger, misc.Fatal)
	applyArguments(&settings)
	misc.CheckError(settings.Verify(), logger, misc.Fatal)
	logger = misc.NewLogger("Viewer", settings.Verbosity, nil)

	session, err := coordinator.NewCoordinator(settings)
	misc.CheckError(err, logger, misc.Fatal)
	logger.Info("Started exploration session")
	logger.Info(session.Summary().String())

	tcpServer := rpc.NewTcpServer(session, settings.ServerAddress, "TcpServer")
	tcpServer.Logger = misc.NewLogger(tcpServer.Name, settings.Verbosity, nil)
	wsServer := rpc.NewWebsocketServer(session, settings.WebsocketAddress, "WebsocketServer")
	wsServer.Logger = misc.NewLogger(wsServer.Name, settings.Verbosity, nil)

	var startup errgroup.Group
	startup.Go(tcpServer.Run)
	startup.Go(wsServer.Run)
	if err := startup.Wait(); err != nil {
		misc.CheckError(tcpServer.Stop(), logger, misc.Debug)
		misc.CheckError(wsServer.Stop(), logger, misc.Debug)
		session.Close()
		misc.CheckError(err, logger, misc.Fatal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("Shutting down")

	var shutdown errgroup.Group
	shutdown.Go(tcpServer.Stop)
	shutdown.Go(wsServer.Stop)
	misc.CheckError(shutdown.Wait(), logger, misc.Warning)

	logger.Infof("Generated %d frames", session.Summary().Frames)
	session.Close()
}
