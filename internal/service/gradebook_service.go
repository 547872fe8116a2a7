package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/coursehub-api/internal/apperror"
	"github.com/noah-isme/coursehub-api/internal/authz"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
	"github.com/noah-isme/coursehub-api/internal/repository"
)

const gradebookSheet = "Gradebook"

var gradebookColumns = []string{"Student", "Email", "Status", "Score", "Grade", "Feedback", "Submitted At", "Graded At"}

// GradebookService renders an assignment's submissions as a spreadsheet.
type GradebookService interface {
	Export(ctx context.Context, actor authz.Actor, assignmentID uint) (*bytes.Buffer, string, error)
}

type gradebookService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	logger      zerolog.Logger
}

// NewGradebookService constructs a GradebookService.
func NewGradebookService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		submissions: submissions,
		assignments: assignments,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
	}
}

// Export returns the workbook bytes and a suggested file name.
func (s *gradebookService) Export(ctx context.Context, actor authz.Actor, assignmentID uint) (*bytes.Buffer, string, error) {
	if err := authz.CanGrade(actor); err != nil {
		return nil, "", err
	}

	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, "", notFoundOr(err, ErrAssignmentNotFound)
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderGradebook(assignment, submissions)
	if err != nil {
		observability.Logger(ctx, s.logger).Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to render gradebook")
		return nil, "", apperror.Internal(err)
	}

	observability.GradebookExports().Inc()
	observability.Logger(ctx, s.logger).Info().Uint("assignment_id", assignmentID).Int("rows", len(submissions)).Msg("gradebook exported")

	return buf, gradebookFileName(assignment), nil
}

func renderGradebook(assignment models.Assignment, submissions []models.Submission) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(gradebookSheet, "A1", assignment.Title); err != nil {
		return nil, err
	}
	lastColumn, _ := excelize.ColumnNumberToName(len(gradebookColumns))
	if err := f.MergeCell(gradebookSheet, "A1", lastColumn+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(gradebookSheet, "A1", "A1", headerStyle); err != nil {
		return nil, err
	}

	for i, title := range gradebookColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(gradebookSheet, cell, title); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(gradebookSheet, "A2", lastColumn+"2", headerStyle); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(gradebookSheet, "A", "B", 28)
	_ = f.SetColWidth(gradebookSheet, "C", "E", 12)
	_ = f.SetColWidth(gradebookSheet, "F", "F", 40)
	_ = f.SetColWidth(gradebookSheet, "G", "H", 22)

	for i, submission := range submissions {
		row := i + 3
		values := []interface{}{
			submission.Student.Name,
			submission.Student.Email,
			string(submission.Status),
			optionalNumber(submission.Score),
			optionalNumber(submission.Grade),
			submission.Feedback,
			submission.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"",
		}
		if submission.GradedAt != nil {
			values[7] = submission.GradedAt.UTC().Format("2006-01-02 15:04")
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(gradebookSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func optionalNumber(value *float64) interface{} {
	if value == nil {
		return ""
	}
	return *value
}

func gradebookFileName(assignment models.Assignment) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, assignment.Title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "assignment"
	}
	return fmt.Sprintf("gradebook-%d-%s.xlsx", assignment.ID, slug)
}
