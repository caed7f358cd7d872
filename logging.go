package apportion

import (
	"github.com/k-donn/go-apportion/hh"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("apportion")
var tracer hh.Tracer = (*allocTracer)(logging.WithSkip(logging.Logger("apportion/hh"), 2))

// Tracer used by the allocator, backed by a Zap logger.
type allocTracer logging.ZapEventLogger

// Log fulfills the hh.Tracer interface
func (h *allocTracer) Log(fmt string, args ...any) {
	(*logging.ZapEventLogger)(h).Debugf(fmt, args...)
}
