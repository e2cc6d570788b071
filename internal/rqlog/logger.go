// Package rqlog provides the leveled logger used across the raptorq
// packages. It is a straight adaptation of wireguard-go's device.Logger:
// the same three-sink, level-gated shape, renamed for a library that has
// no device to log about.
package rqlog

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

const (
	LevelSilent = iota
	LevelError
	LevelInfo
	LevelDebug
)

// Logger is the leveled logger every raptorq component accepts. A nil
// *Logger is valid and discards everything, so callers that don't care
// about logging never need to construct one.
type Logger struct {
	debug *log.Logger
	info  *log.Logger
	err   *log.Logger
}

// New builds a Logger that writes to stdout, gated at level.
func New(level int, prepend string) *Logger {
	output := os.Stdout

	logErr, logInfo, logDebug := func() (io.Writer, io.Writer, io.Writer) {
		if level >= LevelDebug {
			return output, output, output
		}
		if level >= LevelInfo {
			return output, output, ioutil.Discard
		}
		if level >= LevelError {
			return output, ioutil.Discard, ioutil.Discard
		}
		return ioutil.Discard, ioutil.Discard, ioutil.Discard
	}()

	return &Logger{
		debug: log.New(logDebug, "DEBUG: "+prepend, log.Ldate|log.Ltime),
		info:  log.New(logInfo, "INFO: "+prepend, log.Ldate|log.Ltime),
		err:   log.New(logErr, "ERROR: "+prepend, log.Ldate|log.Ltime),
	}
}

func (l *Logger) Debug(v ...interface{}) {
	if l == nil {
		return
	}
	l.debug.Println(v...)
}

func (l *Logger) Debugf(f string, v ...interface{}) {
	if l == nil {
		return
	}
	l.debug.Printf(f, v...)
}

func (l *Logger) Info(v ...interface{}) {
	if l == nil {
		return
	}
	l.info.Println(v...)
}

func (l *Logger) Infof(f string, v ...interface{}) {
	if l == nil {
		return
	}
	l.info.Printf(f, v...)
}

func (l *Logger) Error(v ...interface{}) {
	if l == nil {
		return
	}
	l.err.Println(v...)
}

func (l *Logger) Errorf(f string, v ...interface{}) {
	if l == nil {
		return
	}
	l.err.Printf(f, v...)
}
