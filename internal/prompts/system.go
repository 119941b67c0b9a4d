package prompts

import "context"

// System resolves the effective instructions and response specification
// for a capability stage.
type System interface {
	// Instructions returns the active override for the stage, or the
	// hardcoded default when no override is active.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the immutable response specification for the stage.
	Spec(ctx context.Context, stage Stage) (string, error)
}

type static struct{}

// Static returns a System that always resolves hardcoded defaults.
// Used when no database is available and as the fallback path in tests.
func Static() System {
	return static{}
}

func (static) Instructions(_ context.Context, stage Stage) (string, error) {
	return Instructions(stage)
}

func (static) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
