package performance

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"hrperf/internal/domain/auth"
)

// ExportReviewPDF writes the review sheet for id to w. Visibility follows GetReview.
func (s *Service) ExportReviewPDF(ctx context.Context, actor auth.Actor, id string, w io.Writer) error {
	detail, err := s.GetReview(ctx, actor, id)
	if err != nil {
		return err
	}
	criteria, err := s.store.ListCriteria(ctx, actor.TenantID, detail.ReviewTypeID)
	if err != nil {
		return err
	}
	return RenderReviewPDF(w, detail, criteria)
}

func RenderReviewPDF(w io.Writer, detail ReviewDetail, criteria []Criterion) error {
	names := make(map[string]string, len(criteria))
	for _, c := range criteria {
		names[c.ID] = c.CriterionName
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	title := "Performance Review"
	if detail.ReviewType != nil && detail.ReviewType.Name != "" {
		title = detail.ReviewType.Name
	}
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if detail.Employee != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", detail.Employee.FullName()))
		pdf.Ln(7)
		if detail.Employee.Position != "" {
			pdf.Cell(0, 8, fmt.Sprintf("Position: %s", detail.Employee.Position))
			pdf.Ln(7)
		}
	}
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", detail.ReviewPeriodStart, detail.ReviewPeriodEnd))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Due: %s", detail.ReviewDueDate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", detail.Status))
	pdf.Ln(7)
	if detail.OverallRating != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Overall rating: %.1f", *detail.OverallRating))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	section := func(heading, body string) {
		if body == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, heading)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, body, "", "L", false)
		pdf.Ln(2)
	}
	section("Overall comments", detail.OverallComments)
	section("Strengths", detail.Strengths)
	section("Areas for improvement", detail.AreasForImprovement)
	section("Action items", detail.ActionItems)

	if len(detail.Participants) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Participants")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, p := range detail.Participants {
			pdf.CellFormat(40, 7, p.ParticipantType, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, p.Status, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(detail.Ratings) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Ratings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, r := range detail.Ratings {
			name := names[r.CriterionID]
			if name == "" {
				name = r.CriterionID
			}
			pdf.CellFormat(120, 7, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 7, fmt.Sprintf("%.1f", r.Rating), "1", 1, "R", false, 0, "")
		}
	}

	return pdf.Output(w)
}
