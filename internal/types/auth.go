package types

const (
	SignInPath = "/signin" // sign-in page
	HomePath   = "/home"   // landing page after login

	RequestIDHeader = "X-Request-ID"

	BackendSuccess = "Success" // status string of a successful backend login
)

// Profile codes of the functional roles
const (
	ProfileOperator   = "OPR"
	ProfileSupervisor = "SPV"
	ProfileCompliance = "CMP"
	ProfileAdmin      = "ADM"
)

// Audit event kinds
const (
	EventLoginSuccess       = "login_success"
	EventLoginFailure       = "login_failure"
	EventLogout             = "logout"
	EventSessionInvalidated = "session_invalidated"
)

// Validator modes
const (
	ValidatorInterval   = "interval"
	ValidatorNavigation = "navigation"
	ValidatorBoth       = "both"
)
