package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// File is an in-memory upload.
type File struct {
	Name string
	Data []byte
}

type multipartBody struct {
	fields [][2]string
	files  map[string][]File
}

func newMultipart() *multipartBody {
	return &multipartBody{files: map[string][]File{}}
}

func (m *multipartBody) field(key, value string) {
	m.fields = append(m.fields, [2]string{key, value})
}

func (m *multipartBody) file(key string, f File) {
	m.files[key] = append(m.files[key], f)
}

func (m *multipartBody) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, kv := range m.fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", kv[0], err)
		}
	}
	for key, files := range m.files {
		for _, f := range files {
			fw, err := mw.CreateFormFile(key, f.Name)
			if err != nil {
				return nil, "", fmt.Errorf("multipart file %s: %w", f.Name, err)
			}
			if _, err := fw.Write(f.Data); err != nil {
				return nil, "", fmt.Errorf("multipart file %s: %w", f.Name, err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
