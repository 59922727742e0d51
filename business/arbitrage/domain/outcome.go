package domain

// ErrorRecord is the display-ready form of a pipeline failure.
type ErrorRecord struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	UpstreamCode    string `json:"upstreamCode,omitempty"`
	UpstreamMessage string `json:"upstreamMessage,omitempty"`
	CompactText     string `json:"compactText"`
	ExtendedText    string `json:"extendedText"`
	HasError        bool   `json:"hasError"`
}

// Outcome carries exactly one of Result or Error.
type Outcome struct {
	Result *Result      `json:"result,omitempty"`
	Error  *ErrorRecord `json:"error,omitempty"`
}

// Failed reports whether the outcome holds an error record.
func (o Outcome) Failed() bool {
	return o.Error != nil
}
