package upload

import (
    "encoding/json"
    "errors"
    "io"
    "mime/multipart"
    "net/http"
    "strconv"

    "github.com/local/printdesk/internal/filetype"
    "github.com/local/printdesk/internal/order"
    "github.com/local/printdesk/internal/preview"
)

type estimateResp struct {
    Name     string        `json:"name"`
    Kind     filetype.Kind `json:"kind"`
    MIMEType string        `json:"mimeType"`
    Pages    int           `json:"pages"`
    Method   order.Method  `json:"method"`
}

type quoteReq struct {
    Documents []struct {
        Name         string              `json:"name"`
        PageSettings []order.PageSetting `json:"pageSettings"`
    } `json:"documents"`
}

// formFile returns the "file" part as an order.File.
func (s *Server) formFile(r *http.Request) (order.File, error) {
    if err := r.ParseMultipartForm(s.deps.MaxMemory); err != nil {
        return order.File{}, err
    }
    _, hdr, err := r.FormFile("file")
    if err != nil { return order.File{}, err }
    return partFile(hdr), nil
}

func partFile(hdr *multipart.FileHeader) order.File {
    return order.File{
        Name: hdr.Filename,
        Size: hdr.Size,
        Type: hdr.Header.Get("Content-Type"),
        Open: func() (io.ReadCloser, error) { return hdr.Open() },
    }
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    f, err := s.formFile(r)
    if err != nil { writeError(w, http.StatusBadRequest, "missing file"); return }
    defer func() { _ = r.MultipartForm.RemoveAll() }()

    est := s.deps.Estimator.Estimate(r.Context(), f)
    info := filetype.New().Detect(f.Name, nil)
    writeJSON(w, http.StatusOK, estimateResp{Name: f.Name, Kind: info.Kind, MIMEType: info.MIMEType, Pages: est.Pages, Method: est.Method})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    var req quoteReq
    if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON"); return
    }
    docs := make([]order.Document, 0, len(req.Documents))
    for _, d := range req.Documents {
        for _, ps := range d.PageSettings {
            if !ps.ColorMode.Valid() || !ps.Orientation.Valid() {
                writeError(w, http.StatusBadRequest, "invalid page setting for "+d.Name); return
            }
        }
        docs = append(docs, order.Document{Name: d.Name, Pages: len(d.PageSettings), PageSettings: d.PageSettings})
    }
    writeJSON(w, http.StatusOK, s.deps.Pricing.Summarize(docs))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    page := 1
    if v := r.URL.Query().Get("page"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 { writeError(w, http.StatusBadRequest, "invalid page"); return }
        page = n
    }
    opts := preview.Options{}
    switch mode := order.ColorMode(r.URL.Query().Get("colorMode")); mode {
    case "", order.ColorFull:
    case order.ColorBW:
        opts.Gray = true
    default:
        writeError(w, http.StatusBadRequest, "invalid colorMode"); return
    }
    f, err := s.formFile(r)
    if err != nil { writeError(w, http.StatusBadRequest, "missing file"); return }
    defer func() { _ = r.MultipartForm.RemoveAll() }()

    p, err := preview.Render(f, page, opts)
    switch {
    case errors.Is(err, preview.ErrUnavailable):
        writeError(w, http.StatusUnsupportedMediaType, p.Notice); return
    case errors.Is(err, preview.ErrRead):
        writeError(w, http.StatusBadRequest, err.Error()); return
    case err != nil:
        s.log.Warn().Err(err).Str("file", f.Name).Int("page", page).Msg("preview failed")
        writeError(w, http.StatusUnprocessableEntity, err.Error()); return
    }

    w.Header().Set("X-Page-Count", strconv.Itoa(p.Pages))
    if p.Kind == filetype.KindText {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.Header().Set("X-Truncated", strconv.FormatBool(p.Truncated))
        _, _ = io.WriteString(w, p.Text)
        return
    }
    w.Header().Set("Content-Type", p.MIMEType)
    _, _ = w.Write(p.Image)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
    if s.deps.Status == nil { writeError(w, http.StatusServiceUnavailable, "status checks disabled"); return }
    sum := s.deps.Status.Summary(r.Context())
    code := http.StatusOK
    if !sum.Healthy() { code = http.StatusServiceUnavailable }
    writeJSON(w, code, sum)
}
