// export.go — выгрузка отчёта о соответствии подрядчиков в XLSX.
// Лист "Contractors" — карточки подрядчиков, лист "Documents" — документы.
package service

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// Имена листов отчёта.
const (
	SheetContractors = "Contractors"
	SheetDocuments   = "Documents"
)

var contractorHeaders = []string{
	"ID", "Name", "Status", "ComplianceRate", "ContactName", "ContactEmail",
	"LastUpload", "ComplianceDocs", "ReportingDocs",
}

var documentHeaders = []string{
	"Contractor", "DocumentID", "Type", "Title", "Status", "DueDate",
	"UploadedDate", "RejectionReason", "Uploads",
}

// ContractorSource — источник карточек подрядчиков.
type ContractorSource interface {
	Contractors() []model.ContractorCard
}

// ExportService — сервис выгрузки отчётов.
type ExportService struct {
	source ContractorSource
	logger *slog.Logger
}

// NewExportService создаёт сервис выгрузки отчётов.
func NewExportService(source ContractorSource, logger *slog.Logger) *ExportService {
	return &ExportService{
		source: source,
		logger: logger.With(slog.String("component", "export_service")),
	}
}

// WriteComplianceReport записывает XLSX-отчёт по текущей проекции в w.
func (s *ExportService) WriteComplianceReport(w io.Writer) error {
	cards := s.source.Contractors()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Ошибка закрытия книги", slog.String("error", err.Error()))
		}
	}()

	f.SetSheetName("Sheet1", SheetContractors)
	if _, err := f.NewSheet(SheetDocuments); err != nil {
		return fmt.Errorf("создание листа %s: %w", SheetDocuments, err)
	}

	if err := writeRow(f, SheetContractors, 1, toAny(contractorHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, SheetDocuments, 1, toAny(documentHeaders)); err != nil {
		return err
	}

	docRow := 2
	for i, c := range cards {
		row := []any{
			c.ID, c.Name, c.Status, c.ComplianceRate, c.ContactName, c.ContactEmail,
			c.LastUpload, len(c.ComplianceDocs), len(c.ReportingDocs),
		}
		if err := writeRow(f, SheetContractors, i+2, row); err != nil {
			return err
		}

		docs := make([]model.DocumentView, 0, len(c.ComplianceDocs)+len(c.ReportingDocs))
		docs = append(docs, c.ComplianceDocs...)
		docs = append(docs, c.ReportingDocs...)
		for _, d := range docs {
			reason := ""
			if d.RejectionReason != nil {
				reason = *d.RejectionReason
			}
			row := []any{
				c.Name, d.ID, d.Type, d.Title, string(d.Status), d.DueDate,
				d.UploadedDate, reason, len(d.UploadHistory),
			}
			if err := writeRow(f, SheetDocuments, docRow, row); err != nil {
				return err
			}
			docRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("запись XLSX: %w", err)
	}

	s.logger.Info("Отчёт о соответствии выгружен",
		slog.Int("contractors", len(cards)),
		slog.Int("documents", docRow-2),
	)
	return nil
}

// writeRow записывает значения в строку rowNo начиная с колонки A.
func writeRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("запись ячейки %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
