package types

// SuccessEnvelope is the `{success, data}` body of every successful response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the `{success, message}` body of every failed response.
// Code and Details are additive fields clients may ignore.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
