package app

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks a CLI command that may change stored data. It starts in
// memory with ID 0 and gets an ID from the store only once the command
// actually writes.
type Operation struct {
	ID         int64
	Name       string
	Parameters string
	Status     string
}

func NewOperation(name, parameters string) *Operation {
	return &Operation{Name: name, Parameters: parameters, Status: StatusSuccess}
}

// Persisted reports whether the operation has been recorded in the store.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as unsuccessful.
func (op *Operation) Fail() {
	op.Status = StatusError
}
