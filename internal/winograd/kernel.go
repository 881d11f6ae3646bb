package winograd

import "github.com/born-ml/winograd/internal/parallel"

// Kernel names reported by Name.
const (
	InputTransformName   = "WinogradInputTransform"
	WeightsTransformName = "WinogradWeightsTransform"
	OutputTransformName  = "WinogradOutputTransform"
)

// Kernel is the lifecycle contract the scheduler drives: Configure once,
// then Run over disjoint windows, possibly concurrently.
type Kernel interface {
	parallel.Runnable
}

var (
	_ Kernel = (*InputTransform)(nil)
	_ Kernel = (*WeightsTransform)(nil)
	_ Kernel = (*OutputTransform)(nil)
)

// noCopy makes go vet's copylocks check flag copies of configured kernels.
// A configured kernel is bound to one workspace layout.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// mustRunnable panics when w is outside the configured window.
func mustRunnable(name string, configured bool, w, full parallel.Window) {
	if !configured {
		panic(name + ": Run called before Configure")
	}
	if !w.Within(full) {
		panic(name + ": window " + w.String() + " outside " + full.String())
	}
}
