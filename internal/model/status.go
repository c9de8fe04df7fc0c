package model

// Status is the overall state of an optimization run.
// Keep these values stable; they are intended for API and file output.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusUnbounded  Status = "UNBOUNDED"
	StatusError      Status = "ERROR"
)

// Terminal reports whether no further solve follows this status.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusUnbounded || s == StatusError
}
