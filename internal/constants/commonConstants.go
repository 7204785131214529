package constants

type APIStatus string

const (
	APIStatusOk    APIStatus = "success"
	APIStatusError APIStatus = "error"
)

// ChangedBySystem marks role mutations performed by the rotation engine
// rather than a human operator.
const ChangedBySystem = "system"
