package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"examclock/internal/modules/session/domain"
	apperrors "examclock/internal/platform/errors"
	"examclock/internal/platform/markdown"
	"examclock/internal/platform/slug"
)

// reportHeader is the YAML block at the top of every report.
type reportHeader struct {
	SchemaVersion int            `yaml:"schema_version"`
	ID            string         `yaml:"id"`
	Label         string         `yaml:"label"`
	StartedAt     string         `yaml:"started_at"`
	EndedAt       string         `yaml:"ended_at"`
	Duration      string         `yaml:"duration"`
	TimeTaken     string         `yaml:"time_taken"`
	EndedBy       string         `yaml:"ended_by"`
	Counts        map[string]int `yaml:"counts"`
}

// MarkdownReportStore writes one report per archived session under
// reports/YYYY/MM/DD/.
type MarkdownReportStore struct {
	dir string
}

func NewMarkdownReportStore(dir string) *MarkdownReportStore {
	return &MarkdownReportStore{dir: dir}
}

func (s *MarkdownReportStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.Label)))

	counts := session.Counts()
	header := reportHeader{
		SchemaVersion: domain.SchemaVersion,
		ID:            session.ID,
		Label:         session.Label,
		StartedAt:     session.StartedAt.Format(domain.TimestampLayout),
		EndedAt:       session.EndedAt.Format(domain.TimestampLayout),
		Duration:      domain.FormatClock(session.Duration),
		TimeTaken:     domain.FormatClock(session.TimeTaken),
		EndedBy:       string(session.EndedBy),
		Counts:        map[string]int{},
	}
	for _, c := range domain.Categories() {
		header.Counts[string(c)] = counts[c]
	}
	note, err := markdown.Encode(header, reportBody(session, counts))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, note, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Find scans the report tree for the session id. A prefix must match one
// report only.
func (s *MarkdownReportStore) Find(ctx context.Context, id string) (domain.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Report{}, fmt.Errorf("%w: report id is required", apperrors.ErrInvalidInput)
	}
	var matches []domain.Report
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		var header reportHeader
		body, err := markdown.Decode(raw, &header)
		if err != nil || !strings.HasPrefix(header.ID, id) {
			return nil
		}
		startedAt, _ := time.Parse(domain.TimestampLayout, header.StartedAt)
		report := domain.Report{
			SessionID: header.ID,
			Label:     header.Label,
			StartedAt: startedAt,
			Path:      path,
			Markdown:  body,
		}
		if header.ID == id {
			matches = []domain.Report{report}
			return fs.SkipAll
		}
		matches = append(matches, report)
		return nil
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("scan reports: %w", err)
	}
	switch len(matches) {
	case 0:
		return domain.Report{}, fmt.Errorf("%w: report %q", apperrors.ErrNotFound, id)
	case 1:
		return matches[0], nil
	}
	return domain.Report{}, fmt.Errorf("%w: %q matches %d reports", apperrors.ErrInvalidInput, id, len(matches))
}

func reportBody(session domain.Session, counts map[domain.Category]int) string {
	taken := domain.Summary{TimeTaken: session.TimeTaken}.TimeTakenText()
	b := strings.Builder{}
	fmt.Fprintf(&b, "# Exam session %s\n\n", session.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Total time taken: %s\n", taken)
	fmt.Fprintf(&b, "- Ended by: %s\n\n", session.EndedBy)
	b.WriteString("## Violations\n\n")
	for _, c := range domain.Categories() {
		fmt.Fprintf(&b, "- %s: %d\n", c.ShortLabel(), counts[c])
	}
	b.WriteString("\n## Timeline\n\n")
	if len(session.Timeline) == 0 {
		b.WriteString("No violations recorded.\n")
		return b.String()
	}
	for _, e := range session.Timeline {
		fmt.Fprintf(&b, "- %s %s\n", e.At.Format("15:04:05"), e.Category.Label())
	}
	return b.String()
}
