// Package submit sends a finished order to the upload server.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/printdesk/internal/order"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrTransfer matches every *TransferError.
	ErrTransfer = errors.New("transfer failed")
)

// ValidationError is returned before any network call when the submission
// is incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransferError is any failure talking to the upload endpoint: network
// errors, non-2xx responses, unreadable bodies and success:false replies.
type TransferError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TransferError) Unwrap() error          { return e.Err }
func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

// Student identifies who the order belongs to.
type Student struct {
	Name string
	ID   string
}

// FolderName is the remote folder the files are grouped under.
func (s Student) FolderName() string {
	return strings.TrimSpace(s.Name) + "_" + strings.TrimSpace(s.ID)
}

// RemoteFile is one stored file as reported by the server.
type RemoteFile struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	URL       string `json:"url"`
	ColorMode string `json:"colorMode"`
}

// Receipt confirms a submission.
type Receipt struct {
	FolderID string       `json:"folderId"`
	Message  string       `json:"message"`
	Files    []RemoteFile `json:"files"`
}

type response struct {
	Receipt
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client posts orders to the upload endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a Client with its own http.Client.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{Endpoint: endpoint, HTTP: &http.Client{Timeout: timeout}}
}

func validate(student Student, docs []order.Document) error {
	if strings.TrimSpace(student.Name) == "" || strings.TrimSpace(student.ID) == "" {
		return &ValidationError{Message: "Please fill in all student information"}
	}
	if len(docs) == 0 {
		return &ValidationError{Message: "Please upload at least one file"}
	}
	return nil
}

// Submit uploads docs for student. It never modifies the documents; the
// caller decides whether to clear its intake afterwards.
func (c *Client) Submit(ctx context.Context, student Student, docs []order.Document) (*Receipt, error) {
	if err := validate(student, docs); err != nil {
		return nil, err
	}

	body, ctype, err := encode(student, docs)
	if err != nil {
		return nil, &TransferError{Message: "failed to package files", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, &TransferError{Message: "invalid endpoint", Err: err}
	}
	req.Header.Set("Content-Type", ctype)

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	start := time.Now()
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, &TransferError{Message: "upload request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransferError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransferError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response (HTTP %d)", resp.StatusCode), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Failed to upload files"
		}
		if out.Details != "" {
			msg += ": " + out.Details
		}
		return nil, &TransferError{StatusCode: resp.StatusCode, Message: msg}
	}

	log.Info().
		Str("folder", student.FolderName()).
		Int("files", len(out.Files)).
		Dur("took", time.Since(start)).
		Msg("order submitted")
	return &out.Receipt, nil
}

// encode builds the multipart body: studentName, fileSettings and one
// files part per document.
func encode(student Student, docs []order.Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("studentName", student.FolderName()); err != nil {
		return nil, "", err
	}

	settings := make(map[string]order.FileSetting, len(docs))
	for _, d := range docs {
		settings[d.Name] = order.FileSetting{ColorMode: d.ColorMode(), Pages: d.PageSettings}
	}
	sj, err := json.Marshal(settings)
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("fileSettings", string(sj)); err != nil {
		return nil, "", err
	}

	for _, d := range docs {
		if d.File.Open == nil {
			return nil, "", fmt.Errorf("%s: no content", d.Name)
		}
		rc, err := d.File.Open()
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", d.Name, err)
		}
		fw, err := mw.CreateFormFile("files", d.Name)
		if err == nil {
			_, err = io.Copy(fw, rc)
		}
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", d.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
