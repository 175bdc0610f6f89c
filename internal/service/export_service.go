package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/export"
)

// ExportFormat names a grade report encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type submissionLister interface {
	ListByAssessment(ctx context.Context, actor *models.JWTClaims, assessmentID string) ([]models.SubmissionDetail, error)
}

// ExportResult is a rendered grade report ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders assessment grade reports.
type ExportService struct {
	submissions submissionLister
	assessments assessmentFinder
	renderers   map[ExportFormat]datasetRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService with the csv, pdf and xlsx renderers.
func NewExportService(submissions submissionLister, assessments assessmentFinder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		submissions: submissions,
		assessments: assessments,
		renderers: map[ExportFormat]datasetRenderer{
			ExportFormatCSV:  export.NewCSVExporter(),
			ExportFormatPDF:  export.NewPDFExporter(),
			ExportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// GradeReport renders every submission of an assessment in the requested format.
func (s *ExportService) GradeReport(ctx context.Context, actor *models.JWTClaims, assessmentID string, format ExportFormat) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	format = ExportFormat(strings.ToLower(string(format)))
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")
	}

	// ListByAssessment enforces course ownership.
	submissions, err := s.submissions.ListByAssessment(ctx, actor, assessmentID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, internalError(err, "failed to load assessment")
	}

	title := fmt.Sprintf("%s grades", assessment.Title)
	payload, err := renderer.Render(gradeDataset(assessment, submissions), title)
	if err != nil {
		s.logger.Error("render grade report", zap.String("assessment_id", assessmentID), zap.String("format", string(format)), zap.Error(err))
		return nil, internalError(err, "failed to render grade report")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("grades-%s-%s.%s", slugify(assessment.Title), s.now().UTC().Format("20060102"), format),
		ContentType: exportContentTypes[format],
		Data:        payload,
	}, nil
}

func gradeDataset(assessment *models.Assessment, submissions []models.SubmissionDetail) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Student", "Email", "Status", "Score", "Passed", "Submitted At", "Graded At", "Feedback"},
		Rows:    make([]map[string]string, 0, len(submissions)),
	}
	threshold := float64(assessment.PassThreshold())
	for _, sub := range submissions {
		row := map[string]string{
			"Student":      sub.StudentName,
			"Email":        sub.StudentEmail,
			"Status":       string(sub.Status),
			"Submitted At": sub.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if sub.Score != nil {
			row["Score"] = strconv.FormatFloat(*sub.Score, 'f', -1, 64)
			row["Passed"] = strconv.FormatBool(*sub.Score >= threshold)
		}
		if sub.GradedAt != nil {
			row["Graded At"] = sub.GradedAt.UTC().Format(time.RFC3339)
		}
		if sub.Feedback != nil {
			row["Feedback"] = *sub.Feedback
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "assessment"
	}
	return out
}
