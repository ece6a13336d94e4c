package helpers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"eventboard/internal/domain"
)

// multipartMemory is how much of a multipart body is kept in memory; the rest spills to temp files.
const multipartMemory = 8 << 20

// ErrBodyTooLarge is returned by ParseForm when the request exceeds the upload limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseForm parses a multipart or urlencoded body capped at maxBytes.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("invalid form body: %w", err)
	}
	return nil
}

// ReleaseForm removes the temp files of a parsed multipart form. The server only cleans up
// forms parsed on the request it created, not on copies made by middleware.
func ReleaseForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// WriteFormError writes the response for a ParseForm failure.
func WriteFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		WriteJSONError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, err.Error())
		return
	}
	WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
}

// FormUploads collects the files posted under any of the given field names, in order.
func FormUploads(r *http.Request, fields ...string) []domain.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	var out []domain.Upload
	for _, name := range fields {
		for _, fh := range r.MultipartForm.File[name] {
			out = append(out, uploadFromHeader(fh))
		}
	}
	return out
}

func uploadFromHeader(fh *multipart.FileHeader) domain.Upload {
	return domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FormString returns the first value of key, or "" when absent.
func FormString(r *http.Request, key string) string {
	return r.PostFormValue(key)
}

// FormPtr returns a pointer to the value of key when the client sent it at all, nil otherwise.
// An empty value is returned as a pointer to "" so it can clear a field.
func FormPtr(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// FormValues returns every value of the first key present, e.g. "references" or "references[]".
func FormValues(r *http.Request, keys ...string) []string {
	for _, k := range keys {
		if vs, ok := r.PostForm[k]; ok {
			return vs
		}
	}
	return nil
}

// FormBool parses a boolean form field; absent or empty is false.
func FormBool(r *http.Request, key string) (bool, error) {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

// ParseYear parses the optional year query parameter. Zero means not given.
func ParseYear(r *http.Request) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get("year"))
	if s == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("year must be a four-digit number")
	}
	return year, nil
}
