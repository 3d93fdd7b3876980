package measure

// Tuning collects the interaction thresholds. Defaults match the fixed
// constants the interaction was designed around; tests inject their own.
type Tuning struct {
	// DragThresholdPixels is the cumulative screen distance separating a
	// click from a drag.
	DragThresholdPixels float64

	// NearPointMeters suppresses capture clicks that land within this
	// geographic distance of an already-placed point, when the backend's
	// pick results did not already identify the marker.
	NearPointMeters float64

	// BatchThreshold is the group count above which an initial redraw is
	// sliced across animation frames.
	BatchThreshold int

	// BatchSize is the number of groups redrawn per frame slice.
	BatchSize int
}

// DefaultTuning returns the stock interaction thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		DragThresholdPixels: 5,
		NearPointMeters:     1.0,
		BatchThreshold:      24,
		BatchSize:           24,
	}
}

// ConfirmFunc asks the user to confirm a destructive action (point or
// segment deletion, measurement resume, add-mode arming). It blocks until
// answered; returning false aborts the action.
type ConfirmFunc func(prompt string) bool

// AutoConfirm approves every destructive action. Used by tests and
// headless tooling.
func AutoConfirm(string) bool { return true }

// DenyConfirm rejects every destructive action.
func DenyConfirm(string) bool { return false }
