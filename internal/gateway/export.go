package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

var (
	extendedFilename = regexp.MustCompile(`(?i)filename\*\s*=\s*UTF-8'[^']*'([^;]+)`)
	quotedFilename   = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]+)"`)
	bareFilename     = regexp.MustCompile(`(?i)filename\s*=\s*([^";]+)`)
)

type exportBody struct {
	Format  domain.ExportFormat        `json:"format"`
	Filters domain.TicketFilterPayload `json:"filters"`
}

// ExportTickets renders the filtered ticket set and returns its bytes with a filename.
// Only the HTTP status decides success; the body is not an envelope.
func (c *Client) ExportTickets(ctx context.Context, req domain.ExportRequest) (domain.ExportFile, error) {
	body := exportBody{Format: req.Format}
	if req.Filters != nil {
		body.Filters = *req.Filters
	}

	r := request{
		Method: http.MethodPost,
		Route:  "/api/tickets/export",
		Path:   "/api/tickets/export",
		Body:   body,
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return domain.ExportFile{}, err
	}
	if !resp.IsSuccess() {
		env := parseEnvelope(resp.Body())
		remote := apperrors.NewRemoteError(resp.StatusCode(), env.errorMessage(), requestIDOf(resp))
		c.metrics.RecordError(r.Route, r.Method, "remote")
		c.logger.Warn("export rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("request_id", remote.RequestID),
			zap.String("message", remote.Message))
		return domain.ExportFile{}, remote
	}

	filename := FilenameFromDisposition(resp.Header().Get("Content-Disposition"))
	if filename == "" {
		filename = FallbackExportFilename(req.Format, c.now())
	}
	return domain.ExportFile{
		Filename:    filename,
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

// FilenameFromDisposition extracts the filename of a Content-Disposition header.
// The RFC 5987 filename* form wins over filename. Values are percent-decoded
// when possible and used raw otherwise. It returns "" when no filename is present.
func FilenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	for _, re := range []*regexp.Regexp{extendedFilename, quotedFilename, bareFilename} {
		m := re.FindStringSubmatch(disposition)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])
		if raw == "" {
			continue
		}
		if decoded, err := url.PathUnescape(raw); err == nil {
			return decoded
		}
		return raw
	}
	return ""
}

// FallbackExportFilename names an export the server did not name.
func FallbackExportFilename(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("tickets_%d.%s", now.UnixMilli(), format.Extension())
}
