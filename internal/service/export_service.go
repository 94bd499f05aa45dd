package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 报表导出
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 Content-Type / Content-Disposition 后写入响应。
type ExportService interface {
	// MonthlyReportXLSX 月度报表（汇总 + 分类明细）导出为 Excel
	MonthlyReportXLSX(ctx context.Context, caller Caller, year, month int) (*bytes.Buffer, string, error)
	// MonthlyReportPDF 月度报表导出为 PDF
	MonthlyReportPDF(ctx context.Context, caller Caller, year, month int) (*bytes.Buffer, string, error)
	// ComplaintsXLSX 按筛选条件导出全部投诉（不分页）
	ComplaintsXLSX(ctx context.Context, caller Caller, filter model.ComplaintFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	policy    *Policy
	analytics AnalyticsService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, policy *Policy, analytics AnalyticsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: policy, analytics: analytics, logger: logger}
}

// monthlyData 月度报表所需数据
type monthlyData struct {
	report     *dto.MonthlyReportResponse
	categories []dto.CategoryPerformance
}

func (s *exportService) loadMonthly(ctx context.Context, caller Caller, year, month int) (*monthlyData, error) {
	report, err := s.analytics.MonthlyReport(ctx, caller, year, month)
	if err != nil {
		return nil, err
	}
	categories, err := s.analytics.CategoryPerformance(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &monthlyData{report: report, categories: categories}, nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyReportXLSX
// ═══════════════════════════════════════════════════════════
//
// Sheet "Summary"：月度汇总指标
// Sheet "Categories"：全部分类的处理情况

func (s *exportService) MonthlyReportXLSX(ctx context.Context, caller Caller, year, month int) (*bytes.Buffer, string, error) {
	data, err := s.loadMonthly(ctx, caller, year, month)
	if err != nil {
		return nil, "", err
	}
	r := data.report

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Summary ──
	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	f.SetColWidth(summary, "A", "A", 22)
	f.SetColWidth(summary, "B", "B", 16)

	f.SetCellValue(summary, "A1", fmt.Sprintf("Monthly Report %04d-%02d", r.Period.Year, r.Period.Month))
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)

	rows := [][2]interface{}{
		{"Total complaints", r.Total},
		{"Resolved", r.Resolved},
		{"Pending", r.Pending},
		{"In review", r.InReview},
		{"Unique users", r.UniqueUsers},
		{"Resolution rate (%)", r.ResolutionRate},
	}
	for i, row := range rows {
		f.SetCellValue(summary, cell("A", i+2), row[0])
		f.SetCellValue(summary, cell("B", i+2), row[1])
	}

	// ── Categories ──
	sheet := "Categories"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "F", 14)

	headers := []string{"Category", "Total", "Resolved", "Pending", "In review", "Resolution rate (%)"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, c := range data.categories {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), c.Category)
		f.SetCellValue(sheet, cell("B", row), c.Total)
		f.SetCellValue(sheet, cell("C", row), c.Resolved)
		f.SetCellValue(sheet, cell("D", row), c.Pending)
		f.SetCellValue(sheet, cell("E", row), c.InReview)
		f.SetCellValue(sheet, cell("F", row), c.ResolutionRate)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("monthly_report_%04d_%02d.xlsx", r.Period.Year, r.Period.Month), nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyReportPDF
// ═══════════════════════════════════════════════════════════

func (s *exportService) MonthlyReportPDF(ctx context.Context, caller Caller, year, month int) (*bytes.Buffer, string, error) {
	data, err := s.loadMonthly(ctx, caller, year, month)
	if err != nil {
		return nil, "", err
	}
	r := data.report

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// 标题
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Complaint Monthly Report %04d-%02d", r.Period.Year, r.Period.Month), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// 汇总
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	summary := [][2]string{
		{"Total complaints", fmt.Sprintf("%d", r.Total)},
		{"Resolved", fmt.Sprintf("%d", r.Resolved)},
		{"Pending", fmt.Sprintf("%d", r.Pending)},
		{"In review", fmt.Sprintf("%d", r.InReview)},
		{"Unique users", fmt.Sprintf("%d", r.UniqueUsers)},
		{"Resolution rate", fmt.Sprintf("%.2f%%", r.ResolutionRate)},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// 分类明细
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "By category (all time)", "", 1, "L", false, 0, "")

	widths := []float64{45, 25, 25, 25, 25, 35}
	headers := []string{"Category", "Total", "Resolved", "Pending", "In review", "Rate (%)"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, c := range data.categories {
		pdf.CellFormat(widths[0], 7, c.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", c.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", c.Resolved), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", c.Pending), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%d", c.InReview), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, fmt.Sprintf("%.2f", c.ResolutionRate), "1", 1, "R", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("生成 PDF 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("monthly_report_%04d_%02d.pdf", r.Period.Year, r.Period.Month), nil
}

// ═══════════════════════════════════════════════════════════
// ComplaintsXLSX
// ═══════════════════════════════════════════════════════════

func (s *exportService) ComplaintsXLSX(ctx context.Context, caller Caller, filter model.ComplaintFilter) (*bytes.Buffer, string, error) {
	if err := s.policy.Authorize(caller, OpComplaintList, ""); err != nil {
		return nil, "", err
	}

	list, err := s.repo.Complaint.List(ctx, model.ComplaintFilter{
		Status:   strings.TrimSpace(filter.Status),
		Category: strings.TrimSpace(filter.Category),
		Search:   strings.TrimSpace(filter.Search),
	})
	if err != nil {
		s.logger.Error("查询导出投诉失败", zap.Error(err))
		return nil, "", apperrors.NewStorageError("complaint.list", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Complaints"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Category", "Priority", "Status", "Submitted by", "Email", "Student ID", "Admin response", "Created at", "Updated at"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "K", 18)

	for i := range list {
		c := &list[i]
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), c.ComplaintID)
		f.SetCellValue(sheet, cell("B", row), c.Title)
		f.SetCellValue(sheet, cell("C", row), c.Category)
		f.SetCellValue(sheet, cell("D", row), c.Priority)
		f.SetCellValue(sheet, cell("E", row), c.Status)
		if c.Owner != nil {
			f.SetCellValue(sheet, cell("F", row), c.Owner.Name)
			f.SetCellValue(sheet, cell("G", row), c.Owner.Email)
			if c.Owner.StudentID != nil {
				f.SetCellValue(sheet, cell("H", row), *c.Owner.StudentID)
			}
		}
		if c.AdminResponse != nil {
			f.SetCellValue(sheet, cell("I", row), *c.AdminResponse)
		}
		f.SetCellValue(sheet, cell("J", row), c.CreatedAt.UTC().Format(time.RFC3339))
		f.SetCellValue(sheet, cell("K", row), c.UpdatedAt.UTC().Format(time.RFC3339))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("complaints_%s.xlsx", time.Now().UTC().Format("20060102")), nil
}

// ── Excel 坐标辅助 ──

// colName 0 起始的列序号转列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
