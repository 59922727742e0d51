package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// Inbound throttling
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage pipeline error codes
const (
	// Transport failure reaching an external API
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"

	// External API answered but signaled a business failure
	CodeUpstreamRejected Code = "UPSTREAM_REJECTED"

	// Exchange-rate response without a usable rate
	CodeNoRateData Code = "NO_RATE_DATA"

	// Selection policy found nothing eligible
	CodeNoAdvertisementFound Code = "NO_ADVERTISEMENT_FOUND"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
