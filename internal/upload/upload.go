package upload

import (
    "encoding/json"
    "fmt"
    "io"
    "mime/multipart"
    "net/http"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/local/printdesk/internal/metrics"
    "github.com/local/printdesk/internal/order"
)

// StoredFile is one entry of a successful upload response.
type StoredFile struct {
    Name      string `json:"name"`
    ID        string `json:"id"`
    URL       string `json:"url"`
    ColorMode string `json:"colorMode"`
}

type uploadResp struct {
    Success  bool         `json:"success"`
    Message  string       `json:"message"`
    FolderID string       `json:"folderId"`
    Files    []StoredFile `json:"files"`
}

type failureResp struct {
    Success bool   `json:"success"`
    Error   string `json:"error"`
    Details string `json:"details"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    start := time.Now()
    result := "failed"
    defer func() { metrics.ObserveUpload(result, time.Since(start)) }()

    if s.deps.Limiter != nil {
        ok, err := s.deps.Limiter.Allow(r.Context(), s.clientIP(r))
        if err != nil {
            s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing upload")
        } else if !ok {
            result = "rate_limited"
            metrics.IncRateLimited()
            writeError(w, http.StatusTooManyRequests, "Too many uploads, please try again later")
            return
        }
    }

    if err := r.ParseMultipartForm(s.deps.MaxMemory); err != nil {
        result = "invalid"
        writeError(w, http.StatusBadRequest, "invalid multipart form")
        return
    }
    defer func() { _ = r.MultipartForm.RemoveAll() }()

    studentName := strings.TrimSpace(r.FormValue("studentName"))
    if studentName == "" {
        result = "invalid"
        writeError(w, http.StatusBadRequest, "Student name is required")
        return
    }
    headers := r.MultipartForm.File["files"]
    if len(headers) == 0 {
        result = "invalid"
        writeError(w, http.StatusBadRequest, "No files uploaded")
        return
    }
    settings := parseSettings(r.FormValue("fileSettings"))

    if s.deps.Storage == nil {
        writeJSON(w, http.StatusInternalServerError, failureResp{Error: "Failed to upload files", Details: "storage not configured"})
        return
    }

    folderID, err := s.deps.Storage.CreateFolder(r.Context(), studentName, s.deps.RootFolderID)
    if err != nil {
        s.log.Error().Err(err).Str("student", studentName).Msg("create folder failed")
        writeJSON(w, http.StatusInternalServerError, failureResp{Error: "Failed to upload files", Details: err.Error()})
        return
    }

    files := make([]StoredFile, 0, len(headers))
    for _, hdr := range headers {
        fs := settings[hdr.Filename]
        mode := string(fs.ColorMode)
        if mode == "" { mode = string(order.ColorFull) }

        localPath, err := s.saveTemp(hdr)
        if err != nil {
            s.log.Error().Err(err).Str("file", hdr.Filename).Msg("save upload failed")
            writeJSON(w, http.StatusInternalServerError, failureResp{Error: "Failed to upload files", Details: err.Error()})
            return
        }
        obj, err := s.deps.Storage.UploadFile(r.Context(), localPath, folderID, hdr.Filename, fs.ColorMode == order.ColorBW)
        if err != nil {
            s.log.Error().Err(err).Str("file", hdr.Filename).Str("folder", folderID).Msg("upload failed")
            writeJSON(w, http.StatusInternalServerError, failureResp{Error: "Failed to upload files", Details: err.Error()})
            return
        }
        files = append(files, StoredFile{Name: hdr.Filename, ID: obj.ID, URL: obj.URL, ColorMode: mode})
    }

    result = "success"
    s.log.Info().Str("student", studentName).Str("folder", folderID).Int("files", len(files)).Dur("took", time.Since(start)).Msg("upload complete")
    writeJSON(w, http.StatusOK, uploadResp{Success: true, Message: "Files uploaded successfully", FolderID: folderID, Files: files})
}

// parseSettings decodes the fileSettings field. A malformed value is
// logged and treated as no settings.
func parseSettings(raw string) map[string]order.FileSetting {
    settings := map[string]order.FileSetting{}
    if strings.TrimSpace(raw) == "" { return settings }
    if err := json.Unmarshal([]byte(raw), &settings); err != nil {
        log.Warn().Err(err).Msg("error parsing file settings")
        return map[string]order.FileSetting{}
    }
    return settings
}

// saveTemp copies an uploaded part into the upload directory.
func (s *Server) saveTemp(hdr *multipart.FileHeader) (string, error) {
    if err := os.MkdirAll(s.deps.UploadDir, 0o755); err != nil {
        return "", fmt.Errorf("cannot create upload dir: %w", err)
    }
    src, err := hdr.Open()
    if err != nil { return "", err }
    defer src.Close()

    localPath := filepath.Join(s.deps.UploadDir, uuid.NewString()+"_"+filepath.Base(hdr.Filename))
    out, err := os.Create(localPath)
    if err != nil { return "", fmt.Errorf("cannot save upload: %w", err) }
    if _, err := io.Copy(out, src); err != nil {
        out.Close()
        _ = os.Remove(localPath)
        return "", fmt.Errorf("write failed: %w", err)
    }
    return localPath, out.Close()
}
