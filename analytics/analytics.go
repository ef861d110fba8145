package analytics

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP"
const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"

// ExecutionCollector receives one record per executed script command.
type ExecutionCollector interface {
	RecordCommandSuccess(eventId int, frameId int, code string, index int)
	RecordCommandFailure(eventId int, frameId int, code string, index int, reason string)
}

var executionCollector ExecutionCollector = noopCollector{}

func InitDataCollector(config DataCollectorConfig) error {
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		c, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		executionCollector = c
	default:
		executionCollector = noopCollector{}
	}
	return nil
}

// SetCollector installs c and returns the collector it replaced.
func SetCollector(c ExecutionCollector) ExecutionCollector {
	prev := executionCollector
	executionCollector = c
	return prev
}

func RecordCommandSuccess(eventId int, frameId int, code string, index int) {
	executionCollector.RecordCommandSuccess(eventId, frameId, code, index)
}

func RecordCommandFailure(eventId int, frameId int, code string, index int, reason string) {
	executionCollector.RecordCommandFailure(eventId, frameId, code, index, reason)
}

type noopCollector struct{}

func (noopCollector) RecordCommandSuccess(eventId int, frameId int, code string, index int) {}

func (noopCollector) RecordCommandFailure(eventId int, frameId int, code string, index int, reason string) {
}

// Sync flushes the installed collector when it buffers output.
func Sync() error {
	if s, ok := executionCollector.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
