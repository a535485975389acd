package usecase

// Recorder receives business events for metrics. *metrics.Recorder
// implements it.
type Recorder interface {
	RosterMutation(op string, err error)
	Prediction(balance string, wins int)
	Submission(outcome string)
	RolloverReset(n int)
}

type nopRecorder struct{}

func (nopRecorder) RosterMutation(string, error) {}
func (nopRecorder) Prediction(string, int) {}
func (nopRecorder) Submission(string) {}
func (nopRecorder) RolloverReset(int) {}
