package route

// DecisionKind is the outcome of evaluating the guards for one navigation.
type DecisionKind int

const (
	ShowLoading DecisionKind = iota + 1
	RedirectToLogin
	RedirectToLanding
	Allow
)

func (k DecisionKind) String() string {
	switch k {
	case ShowLoading:
		return "show_loading"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToLanding:
		return "redirect_to_landing"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Decision is what the caller should do with a navigation.
type Decision struct {
	Kind DecisionKind `json:"decision"`
	// Target is set for both redirect kinds.
	Target string `json:"target,omitempty"`
	// Route is the resolved route for Allow; for redirect routes it is the final target.
	Route  *Route             `json:"-"`
	Params map[string]string `json:"params,omitempty"`
}
