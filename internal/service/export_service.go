package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/pkg/export"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

// ExportService renders the student collection as downloadable reports.
type ExportService struct {
	students studentLister
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(students studentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, logger: logger}
}

// RosterCSV renders the full roster as CSV.
func (s *ExportService) RosterCSV(ctx context.Context) ([]byte, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read students")
	}

	table := export.Table{
		Headers: []string{"Roll Number", "Full Name", "Class", "Semester", "Email", "Phone", "Fee Status", "Attendance"},
	}
	for _, st := range students {
		table.Rows = append(table.Rows, []string{
			st.RollNumber,
			st.FullName,
			st.Class,
			st.Semester,
			st.Email,
			st.Phone,
			string(st.FeeStatus),
			strconv.FormatFloat(st.Attendance, 'f', -1, 64),
		})
	}

	raw, err := export.CSV(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return raw, nil
}

// FeeReportPDF renders a per-student fee breakdown with totals.
func (s *ExportService) FeeReportPDF(ctx context.Context) ([]byte, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read students")
	}

	table := export.Table{
		Headers: []string{"Roll Number", "Full Name", "Fee Status", "Paid", "Total", "Outstanding"},
	}
	var paidSum, totalSum float64
	for _, st := range students {
		paidSum += st.FeePaid
		totalSum += st.FeeTotal
		table.Rows = append(table.Rows, []string{
			st.RollNumber,
			st.FullName,
			string(st.FeeStatus),
			formatAmount(st.FeePaid),
			formatAmount(st.FeeTotal),
			formatAmount(st.FeeTotal - st.FeePaid),
		})
	}
	table.Footer = []string{"", "Totals", "", formatAmount(paidSum), formatAmount(totalSum), formatAmount(totalSum - paidSum)}

	raw, err := export.PDF(table, "Fee Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render fee report")
	}
	return raw, nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
