package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
	"github.com/munazzamapp/munazzam-server/internal/http/response"
	"github.com/munazzamapp/munazzam-server/internal/service"
	"github.com/munazzamapp/munazzam-server/internal/sheet"
)

const (
	headerExportID       = "X-Export-ID"
	headerRecipientCount = "X-Recipient-Count"

	// multipartMemory is how much of an upload is held in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20
	maxExportBody   = 1 << 20
)

// StatusNoNewRecipients is returned instead of a file when an export finds
// nobody new to message.
const StatusNoNewRecipients = "no_new_recipients"

// ExportCampaignRequest is the JSON body of an export request.
type ExportCampaignRequest struct {
	CampaignName string   `json:"campaign_name"`
	Message      string   `json:"message"`
	Tags         []string `json:"tags"`
	Shield       bool     `json:"shield"`
	Format       string   `json:"format,omitempty"` // xlsx or csv; overrides ?format= and the configured default
}

// ExportStatusResponse reports an export that produced no file.
type ExportStatusResponse struct {
	Status   string            `json:"status"`
	ExportID string            `json:"export_id"`
	Campaign *CampaignResponse `json:"campaign,omitempty"`
}

// handleImportContacts accepts a multipart upload with a "file" field and an
// optional comma separated "tags" field.
func (s *Server) handleImportContacts(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.Import.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes", s.logger)
			return
		}
		response.HandleError(w, domainerrors.Validation("expected a multipart form with a file field"), s.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.HandleError(w, domainerrors.Validation("file is required"), s.logger)
		return
	}
	defer file.Close()

	tags := domain.SplitTagList(r.FormValue("tags"))

	result, err := s.services.Import.ImportFile(r.Context(), header.Filename, file, tags)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleExportCampaign runs the export pipeline and streams the personalized
// messages back as a spreadsheet download.
func (s *Server) handleExportCampaign(w http.ResponseWriter, r *http.Request) {
	var req ExportCampaignRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBody))
	if err := dec.Decode(&req); err != nil {
		response.HandleError(w, domainerrors.Validation("invalid JSON body"), s.logger)
		return
	}

	format, err := s.exportFormat(req.Format, r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.services.Campaign.Export(r.Context(), service.ExportRequest{
		CampaignName: req.CampaignName,
		Message:      req.Message,
		Tags:         req.Tags,
		Shield:       req.Shield,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if result.NoNewRecipients {
		status := ExportStatusResponse{Status: StatusNoNewRecipients, ExportID: result.ExportID}
		if result.Campaign != nil {
			c := toCampaignResponse(result.Campaign)
			status.Campaign = &c
		}
		w.Header().Set(headerExportID, result.ExportID)
		response.Success(w, status, s.logger)
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteExport(&buf, format, result.Lines); err != nil {
		// The delivery history is already committed; the export id ties the
		// failure to the recipients recorded under it.
		s.logger.Error("failed to encode export file",
			"export_id", result.ExportID,
			"campaign", result.Campaign.Name,
			"error", err,
		)
		response.HandleError(w, err, s.logger)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": exportFilename(result.Campaign.Name, format, time.Now()),
	})

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(headerExportID, result.ExportID)
	w.Header().Set(headerRecipientCount, strconv.Itoa(len(result.Lines)))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("export download interrupted", "export_id", result.ExportID, "error", err)
	}
}

// exportFormat picks the first non-empty of the body field, the query
// parameter and the configured default.
func (s *Server) exportFormat(candidates ...string) (sheet.Format, error) {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return sheet.ParseFormat(c)
		}
	}
	return sheet.ParseFormat(s.cfg.Campaign.ExportFormat)
}

// exportFilename builds "<campaign>_<yyyy-mm-dd>.<ext>" with characters that
// are unsafe in file names replaced.
func exportFilename(campaign string, f sheet.Format, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsSpace(r):
			return '-'
		}
		return r
	}, strings.TrimSpace(campaign))
	if name == "" {
		name = "campaign"
	}
	return name + "_" + now.Format("2006-01-02") + f.Extension()
}
