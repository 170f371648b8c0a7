package misc

import "github.com/BrugadaSyndrome/bslogger"

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

// Nothing is the empty argument or reply of rpc methods that carry no data
type Nothing struct{}

// CheckError logs err at the given severity. Fatal terminates the process.
func CheckError(err error, logger bslogger.Logger, severity Severity) {
	if err == nil {
		return
	}

	switch severity {
	case Fatal:
		logger.Fatal(err.Error())
	case Error:
		logger.Error(err.Error())
	case Warning:
		logger.Warning(err.Error())
	case Info:
		logger.Info(err.Error())
	case Debug:
		logger.Debug(err.Error())
	default:
		logger.Fatal(err.Error())
	}
}
