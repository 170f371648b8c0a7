package misc

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func ReadFile(fileName string) ([]byte, error) {
	if fileName == "" {
		return nil, errors.New("no filename supplied")
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", fileName, err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", fileName, err)
	}
	return fileBytes, nil
}

// OpenLogFile creates or appends to the log file at path. An empty path means no log file.
func OpenLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
	}
	return file, nil
}
