// reports.go — обработчик выгрузки XLSX-отчёта о соответствии.
package handlers

import (
	"bytes"
	"net/http"
	"strconv"
)

// xlsxContentType — MIME-тип книги Excel.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetComplianceReport — GET /api/v1/reports/compliance.xlsx.
// Книга собирается в памяти, чтобы ошибка попадала в JSON-ответ.
func (h *APIHandler) GetComplianceReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.export.WriteComplianceReport(&buf); err != nil {
		h.serviceError(w, r, err, "Ошибка формирования отчёта")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="compliance.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
