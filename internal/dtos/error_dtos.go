package dtos

// ValidationErrorDetail is the structured form of one failed validator tag.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
