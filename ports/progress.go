package ports

// ProgressReporter receives best-effort progress telemetry from worker tasks.
// Updates may arrive out of order; receivers must not treat them as a state
// machine.
type ProgressReporter interface {
	Report(current, total int, message string)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Report(current, total int, message string) {}
