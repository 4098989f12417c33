// Package sl holds slog attribute helpers shared across the service.
package sl

import (
	"fmt"
	"log/slog"
)

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}
	return slog.String("err", err.Error())
}

// Secret keeps the first 5 characters of value so credentials can be told apart in logs
// without being leaked.
func Secret(key, value string) slog.Attr {
	r := "***"
	if len(value) > 5 {
		r = fmt.Sprintf("%s***", value[0:5])
	}
	if value == "" {
		r = "?"
	}
	return slog.String(key, r)
}

func Module(mod string) slog.Attr {
	return slog.String("module", mod)
}
