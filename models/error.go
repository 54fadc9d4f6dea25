package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response string `json:"response"`
}
