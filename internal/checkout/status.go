package checkout

type Status string

const (
	StatusCreated  Status = "created"
	StatusVerified Status = "verified"
	StatusExpired  Status = "expired"
	StatusError    Status = "error"
)

var validNext = map[Status]map[Status]bool{
	StatusCreated:  {StatusVerified: true, StatusExpired: true, StatusError: true},
	StatusVerified: {StatusExpired: true, StatusError: true},
	StatusExpired:  {},
	StatusError:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Usable reports whether a session in this status may still carry a checkout.
func (s Status) Usable() bool {
	return s == StatusCreated || s == StatusVerified
}
