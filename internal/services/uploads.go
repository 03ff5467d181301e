package services

// Upload is an in-memory file part taken from a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}
