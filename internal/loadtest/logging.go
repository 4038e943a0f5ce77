package loadtest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/merit/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the global logger to write to out and, when
// logFile is set, to that file as well. The returned closer releases the
// file.
func SetupLogging(out io.Writer, logFile string) (io.Closer, error) {
	if logFile == "" {
		if err := logger.Init(logger.WithWriter(out)); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(out, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}
