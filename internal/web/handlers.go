package web

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/logging"
	"github.com/JonMunkholm/bookingest/internal/sheet"
)

const (
	// multipartOverhead allows for form fields and boundaries around the file.
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20

	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"service": s.cfg.Service.Name,
		"version": s.cfg.Service.Version,
		"ingest":  s.ingester.Limiter().Status(),
	}
	if err := s.repo.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check: database unreachable", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	} else {
		body["database"] = "ok"
	}
	writeJSON(w, status, body)
}

// handleIngest validates and publishes an uploaded spreadsheet. Row and
// header problems are part of a 200 response; only failures to run the
// ingestion are errors.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer file.Close()

	res, err := s.ingester.Ingest(r.Context(), fileSource(r, header), file)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if res.Rejection == nil {
		res.Rejection = []core.Issue{}
	}
	writeJSON(w, http.StatusOK, res)
}

// ValidateResponse is the body of a dry run.
type ValidateResponse struct {
	FileName string                      `json:"file_name"`
	Valid    bool                        `json:"valid"`
	Books    []core.Book                 `json:"books"`
	Issues   []core.Issue                `json:"issues"`
	Guidance map[string]core.UserMessage `json:"guidance,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer file.Close()

	preview, err := s.ingester.Validate(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	resp := ValidateResponse{
		FileName: preview.FileName,
		Valid:    len(preview.Issues) == 0,
		Books:    preview.Books,
		Issues:   preview.Issues,
	}
	for _, is := range preview.Issues {
		if resp.Guidance == nil {
			resp.Guidance = make(map[string]core.UserMessage)
		}
		resp.Guidance[is.ErrorCode] = core.IssueGuidance(is.ErrorCode)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListIngestions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}

	runs, err := s.repo.RecentIngestions(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetIngestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, errInvalidID, 0)
		return
	}

	detail, err := s.repo.GetIngestion(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.repo.GetBook(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleGetOnix(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	doc, err := s.repo.GetOnix(r.Context(), isbn)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Disposition", `attachment; filename="`+isbn+`.xml"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// handleIssueGuidance explains an issue code to spreadsheet authors.
func (s *Server) handleIssueGuidance(w http.ResponseWriter, r *http.Request) {
	msg, ok := core.LookupIssueGuidance(chi.URLParam(r, "code"))
	if !ok {
		s.respondError(w, r, errUnknownCode, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// handleDownloadTemplate returns an empty spreadsheet with the required
// headings. ?format=csv selects CSV; the default is xlsx.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	format := sheet.FormatXLSX
	if f := r.URL.Query().Get("format"); f != "" {
		format = sheet.Format(f)
	}

	var buf bytes.Buffer
	if err := sheet.WriteTemplate(&buf, format); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="books_template.`+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// formFile limits the request body and returns the uploaded "file" part.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if max := s.cfg.Ingest.MaxFileSize; max > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, max+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, err
		}
		return nil, nil, errNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	return file, header, nil
}
