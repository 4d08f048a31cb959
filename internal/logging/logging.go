package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mvp-tweet/internal/config"

	"github.com/gin-gonic/gin"
)

// Setup points the standard logger and gin's writers at stdout and, when
// configured, an append-only log file. The returned closer releases the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if path := strings.TrimSpace(cfg.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	flags := log.LstdFlags
	if strings.EqualFold(cfg.Level, "debug") {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out

	return closerFunc(func() error {
		log.SetOutput(os.Stderr)
		if file == nil {
			return nil
		}
		return file.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
