// Package report renders the monthly settlement snapshot as a downloadable
// Excel workbook.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hamkharj/internal/api"
	"hamkharj/internal/format"
	"hamkharj/pkg/jalali"
)

const sheetName = "تسویه"

// ExcelWriter builds settlement workbooks.
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelWriter{logger: logger}
}

// Filename returns the download name for a month's export.
func Filename(year, month int) string {
	return fmt.Sprintf("settlement-%d-%02d.xlsx", year, month)
}

// Build renders the report into an xlsx document. User names are resolved
// against the given list, falling back to "#id" for unknown members.
func (w *ExcelWriter) Build(report *api.SettlementReport, users []api.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		w.logger.Warn("Failed to drop default sheet", zap.Error(err))
	}
	if err := f.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		w.logger.Warn("Failed to set sheet view", zap.Error(err))
	}

	title := fmt.Sprintf("تسویه %s %d", jalali.MonthName(report.ShamsiMonth), report.ShamsiYear)
	w.setCell(f, "A1", title)

	row := 3
	w.setCell(f, cell("A", row), "پرداخت‌کننده")
	w.setCell(f, cell("B", row), "دریافت‌کننده")
	w.setCell(f, cell("C", row), "مبلغ")
	row++

	if len(report.Transfers) == 0 {
		w.setCell(f, cell("A", row), "تراکنش پیشنهادی برای تسویه وجود ندارد")
		row++
	}
	for _, tr := range report.Transfers {
		w.setCell(f, cell("A", row), api.NameOf(users, tr.FromUserID))
		w.setCell(f, cell("B", row), api.NameOf(users, tr.ToUserID))
		w.setCell(f, cell("C", row), format.Toman(tr.Amount))
		row++
	}

	if len(report.MyBalances) > 0 {
		row++
		w.setCell(f, cell("A", row), "تراز با اعضا")
		row++
		w.setCell(f, cell("A", row), "عضو")
		w.setCell(f, cell("B", row), "تراز")
		row++
		for _, b := range report.MyBalances {
			w.setCell(f, cell("A", row), api.NameOf(users, b.UserID))
			w.setCell(f, cell("B", row), format.Toman(b.Amount))
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Settlement workbook built",
		zap.Int("shamsi_year", report.ShamsiYear),
		zap.Int("shamsi_month", report.ShamsiMonth),
		zap.Int("transfers", len(report.Transfers)))
	return buf.Bytes(), nil
}

// setCell sets a cell value in the Excel file
func (w *ExcelWriter) setCell(f *excelize.File, axis, value string) {
	if err := f.SetCellValue(sheetName, axis, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", axis),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func boolPtr(b bool) *bool { return &b }
