package server

// Swagger envelopes matching respondData and AbortWithError.
type DataResponse struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error errorBody `json:"error"`
}
