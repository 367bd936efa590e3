// Package logging writes one append-only log file per Habitica account.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	filePrefix = "habitica_automation_"
	timeLayout = "2006-01-02 15:04:05,000"
)

// Formatter renders "<time> <LEVEL>:<message> key=value ..." lines.
type Formatter struct{}

func (Formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(e.Time.Format(timeLayout))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteByte(':')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// FileName returns the log file name for username.
func FileName(username string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, username)
	return filePrefix + safe + ".log"
}

// OpenAccount opens (creating if needed) the log file of username in dir.
// The caller owns the returned logger and must close the file when the
// account is done.
func OpenAccount(dir, username string) (*logrus.Logger, io.Closer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, errors.Wrapf(err, "create log dir %s", dir)
	}
	path := filepath.Join(dir, FileName(username))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", path)
	}
	return New(f), f, nil
}

// New returns an info-level logger writing to w.
func New(w io.Writer) *logrus.Logger {
	return &logrus.Logger{
		Out:       w,
		Formatter: Formatter{},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
		ExitFunc:  os.Exit,
	}
}

// SetupStd points the standard logrus logger at stderr using Formatter.
func SetupStd(verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(Formatter{})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
