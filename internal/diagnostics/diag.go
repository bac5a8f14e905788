package diagnostics

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the preview control channel and the app loop.
const (
	CodeControlBadJSON  = "CONTROL.BAD_JSON"
	CodeControlUnknown  = "CONTROL.UNKNOWN"
	CodePointerOutside  = "POINTER.OUTSIDE"
	CodeSurfaceFallback = "SURFACE.FALLBACK"
	CodeFrameSlow       = "FRAME.SLOW"
	CodeTimingDump      = "TIMING.DUMP"
)

type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Evidence map[string]any `json:"evidence,omitempty"`
}

func New(sev Severity, code, summary string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Summary: summary}
}

// With returns a copy of d carrying one more piece of evidence.
func (d Diagnostic) With(key string, v any) Diagnostic {
	ev := make(map[string]any, len(d.Evidence)+1)
	for k, old := range d.Evidence {
		ev[k] = old
	}
	ev[key] = v
	d.Evidence = ev
	return d
}

func (d Diagnostic) level() zerolog.Level {
	switch d.Severity {
	case Err:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log writes d to the global logger.
func (d Diagnostic) Log() {
	e := log.WithLevel(d.level()).Str("code", d.Code)
	if d.Detail != "" {
		e = e.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		e = e.Interface("evidence", d.Evidence)
	}
	e.Msg(d.Summary)
}
