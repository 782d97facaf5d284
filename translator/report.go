package translator

import (
	log "github.com/sirupsen/logrus"
)

type Message struct {
	Level log.Level
	Text  string
}

// Report collects what a translation logged at warning level or above. It is
// installed as a hook on the translator's own logger.
type Report struct {
	messages []Message
}

func (r *Report) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}
}

func (r *Report) Fire(e *log.Entry) error {
	r.messages = append(r.messages, Message{Level: e.Level, Text: e.Message})
	return nil
}

func (r *Report) Messages() []Message {
	return append([]Message(nil), r.messages...)
}

// Warnings returns the messages below error severity, in order.
func (r *Report) Warnings() []string {
	var out []string
	for _, m := range r.messages {
		if m.Level > log.ErrorLevel {
			out = append(out, m.Text)
		}
	}
	return out
}

// Errors returns the messages at or above error severity, in order.
func (r *Report) Errors() []string {
	var out []string
	for _, m := range r.messages {
		if m.Level <= log.ErrorLevel {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *Report) reset() {
	r.messages = nil
}

// newLogger returns a logger that writes where the standard logger does and
// never drops warnings, so the report sees all of them.
func newLogger(r *Report) *log.Logger {
	std := log.StandardLogger()
	l := log.New()
	l.SetOutput(std.Out)
	l.SetFormatter(std.Formatter)
	level := std.GetLevel()
	if level < log.WarnLevel {
		level = log.WarnLevel
	}
	l.SetLevel(level)
	l.AddHook(r)
	return l
}
