package logger

import (
	"context"
	"os"
	"strings"

	"github.com/grindlemire/graft"
	"go.trai.ch/viewc/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// FormatEnv selects the default log format; "json" switches to JSON records.
const FormatEnv = "VIEWC_LOG_FORMAT"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return newFromEnv(os.Getenv), nil
		},
	})
}

func newFromEnv(getenv func(string) string) ports.Logger {
	l := New()
	if strings.EqualFold(strings.TrimSpace(getenv(FormatEnv)), "json") {
		l.(*Logger).SetJSON(true)
	}
	return l
}
