package lowering

import "github.com/ethereum/go-ethereum/metrics"

var (
	loweredLibfuncCounter = metrics.NewRegisteredCounter("lowering/libfuncs", nil)
	emittedNIRCounter     = metrics.NewRegisteredCounter("lowering/nir/emitted", nil)
)
