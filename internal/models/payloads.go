package models

// These structs define the JSON payloads exchanged with the portal's
// HTTP functions.

// RegisterRequest is the input for the register function.
type RegisterRequest struct {
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Mobileno        string `json:"mobileno"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RegisterResponse is the output of the register function.
type RegisterResponse struct {
	Status      string `json:"status"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the input for the login function.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the output of the login function.
type LoginResponse struct {
	Status       string `json:"status"`
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// ContactRequest is the input for the contact function.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// StatusResponse is the generic acknowledgement.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse carries the raw error text shown to the user.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// PredictionHistoryResponse is the output of the prediction-history function.
type PredictionHistoryResponse struct {
	Status  string            `json:"status"`
	Records []PersistedRecord `json:"records"`
}

// HealthReportResponse is the output of the health-report function.
type HealthReportResponse struct {
	Status      string `json:"status"`
	ReportURL   string `json:"reportUrl"`
	RecordCount int    `json:"recordCount"`
}
