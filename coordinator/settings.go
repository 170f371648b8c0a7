package coordinator

import (
	"encoding/json"
	"fmt"

	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
)

type Settings struct {
	LogFile            string
	MandelbrotSettings mandelbrot.Settings
	ServerAddress      string
	Verbosity          string
	WebsocketAddress   string
}

// NewSettings reads settings from a json file and fills in defaults. An empty
// file name yields the defaults.
func NewSettings(settingsFile string) (Settings, error) {
	var s Settings
	if settingsFile != "" {
		fileBytes, err := misc.ReadFile(settingsFile)
		if err != nil {
			return s, err
		}
		if err := json.Unmarshal(fileBytes, &s); err != nil {
			return s, fmt.Errorf("unable to parse %s: %w", settingsFile, err)
		}
	}
	if err := s.Verify(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) String() string {
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("Server Address: %s\n", s.ServerAddress)
	output += fmt.Sprintf("Websocket Address: %s\n", s.WebsocketAddress)
	output += fmt.Sprintf("Verbosity: %s\n", s.Verbosity)
	output += fmt.Sprintf("Log File: %s\n", s.LogFile)
	output += fmt.Sprintf("Mandelbrot: %s\n", s.MandelbrotSettings.String())
	return output
}

func (s *Settings) Verify() error {
	if err := s.MandelbrotSettings.Verify(); err != nil {
		return fmt.Errorf("mandelbrot settings: %w", err)
	}
	if s.ServerAddress == "" {
		s.ServerAddress = ":51000"
	}
	if s.WebsocketAddress == "" {
		s.WebsocketAddress = ":51001"
	}
	if s.Verbosity == "" {
		s.Verbosity = "Normal"
	}
	// s.LogFile defaults to no log file
	return nil
}
