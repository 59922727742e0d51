package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",
	CodeRateLimitExceeded:  "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Arbitrage pipeline
	CodeUpstreamUnavailable:  "Upstream service unavailable",
	CodeUpstreamRejected:     "Upstream service rejected the request",
	CodeNoRateData:           "No exchange rate data in upstream response",
	CodeNoAdvertisementFound: "No eligible advertisement found",

	CodeCircuitOpen: "Circuit breaker is open",
}
