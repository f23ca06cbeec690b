package adminclient

// Hoverfly modes accepted by SetMode.
const (
	ModeSimulate   = "simulate"
	ModeCapture    = "capture"
	ModeSpy        = "spy"
	ModeSynthesize = "synthesize"
	ModeModify     = "modify"
	ModeDiff       = "diff"
)

// ModeArguments are the optional arguments of a mode change.
type ModeArguments struct {
	HeadersWhitelist []string `json:"headersWhitelist,omitempty"`
	Stateful         bool     `json:"stateful,omitempty"`
	MatchingStrategy string   `json:"matchingStrategy,omitempty"`
}

// ModeView is the body of GET and PUT /api/v2/hoverfly/mode.
type ModeView struct {
	Mode      string        `json:"mode"`
	Arguments ModeArguments `json:"arguments"`
}

// DestinationView is the body of GET and PUT /api/v2/hoverfly/destination.
type DestinationView struct {
	Destination string `json:"destination"`
}

// InfoView is the body of GET /api/v2/hoverfly.
type InfoView struct {
	Destination   string        `json:"destination"`
	Mode          string        `json:"mode"`
	Arguments     ModeArguments `json:"arguments"`
	Version       string        `json:"version"`
	UpstreamProxy string        `json:"upstreamProxy"`
	Usage         struct {
		Counters map[string]int `json:"counters"`
	} `json:"usage"`
}

// ErrorResponse is the error body returned by the admin API.
type ErrorResponse struct {
	Error string `json:"error"`
}
