package observability

import (
	"log"
	"os"
)

// Logger writes level-tagged key-value lines over the standard log package.
// The gateway's services log their own layer/component lines directly; this
// logger covers process lifecycle and the audit trail.
type Logger struct {
	out *log.Logger
}

func NewLogger() *Logger {
	return &Logger{out: log.New(os.Stdout, "", log.LstdFlags|log.LUTC)}
}

func (lg *Logger) Info(msg string, kv ...any)  { lg.write("INFO", msg, kv) }
func (lg *Logger) Error(msg string, kv ...any) { lg.write("ERROR", msg, kv) }

func (lg *Logger) write(level, msg string, kv []any) {
	lg.out.Println(append([]any{level, msg}, kv...)...)
}
