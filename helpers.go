package main

import (
	"flag"

	"MandelbrotExplorer/coordinator"
)

var (
	settingsFile                          string
	height, maxIterations, width          uint
	workers                               int
	colorScheme, serverAddress, wsAddress string
	logFile, verbosity                    string
	useHistogram                          bool
)

func parseArguments() {
	flag.StringVar(&settingsFile, "settings", "", "Json file with the viewer settings")

	// Overrides for values in the settings file
	flag.StringVar(&colorScheme, "scheme", "", "Color scheme: green, rainbow, redish or blue")
	flag.UintVar(&height, "height", 0, "Height of the viewport in pixels")
	flag.StringVar(&logFile, "logFile", "", "File that mirrors the log output")
	flag.UintVar(&maxIterations, "maxIterations", 0, "Iterations to run to verify each point")
	flag.StringVar(&serverAddress, "address", "", "Address of the tcp rpc server")
	flag.BoolVar(&useHistogram, "histogram", false, "Color with histogram equalization")
	flag.StringVar(&verbosity, "verbosity", "", "Log verbosity: Minimal, Normal or All")
	flag.UintVar(&width, "width", 0, "Width of the viewport in pixels")
	flag.IntVar(&workers, "workers", 0, "Number of generator workers")
	flag.StringVar(&wsAddress, "websocketAddress", "", "Address of the websocket rpc server")

	flag.Parse()
}

// applyArguments overwrites settings with every flag that was given
func applyArguments(settings *coordinator.Settings) {
	ms := &settings.MandelbrotSettings
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scheme":
			ms.ColorScheme = colorScheme
		case "height":
			ms.Height = height
		case "histogram":
			ms.UseHistogram = useHistogram
		case "maxIterations":
			ms.MaxIterations = maxIterations
		case "width":
			ms.Width = width
		case "workers":
			ms.Workers = workers
		case "address":
			settings.ServerAddress = serverAddress
		case "logFile":
			settings.LogFile = logFile
		case "verbosity":
			settings.Verbosity = verbosity
		case "websocketAddress":
			settings.WebsocketAddress = wsAddress
		}
	})
}
