package vkcube

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

//Loggers groups the info/warn/error streams handed to the renderer and its parts.
type Loggers struct {
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger

	files []*os.File
}

//NewLoggers writes everything to stderr when dir is empty, otherwise to
//info_log.txt, warn_log.txt and error_log.txt inside dir.
func NewLoggers(dir string) (*Loggers, error) {
	if dir == "" {
		return &Loggers{
			Info:  log.New(os.Stderr, "INFO: ", logFlags),
			Warn:  log.New(os.Stderr, severityLabel(os.Stderr, "WARNING", "3"), logFlags),
			Error: fatalLogger(os.Stderr),
		}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	l := &Loggers{}
	open := func(name string) (io.Writer, error) {
		file, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", name)
		}
		l.files = append(l.files, file)
		return file, nil
	}

	info, err := open("info_log.txt")
	if err != nil {
		l.Close()
		return nil, err
	}
	warn, err := open("warn_log.txt")
	if err != nil {
		l.Close()
		return nil, err
	}
	errs, err := open("error_log.txt")
	if err != nil {
		l.Close()
		return nil, err
	}
	l.Info = log.New(info, "INFO: ", logFlags)
	l.Warn = log.New(warn, "WARNING: ", logFlags)
	l.Error = log.New(errs, "ERROR: ", logFlags)
	return l, nil
}

//DiscardLoggers is used by tests and headless helpers.
func DiscardLoggers() *Loggers {
	return &Loggers{
		Info:  log.New(io.Discard, "", 0),
		Warn:  log.New(io.Discard, "", 0),
		Error: log.New(io.Discard, "", 0),
	}
}

func (l *Loggers) Close() {
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}

func fatalLogger(w io.Writer) *log.Logger {
	return log.New(w, severityLabel(w, "ERROR", "1"), logFlags)
}

//severityLabel colors the prefix only when w is a terminal; files get plain text.
func severityLabel(w io.Writer, label, color string) string {
	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return label + ": "
	}
	return out.String(label).Foreground(out.Color(color)).Bold().String() + ": "
}
