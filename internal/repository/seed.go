// seed.go — демонстрационный набор данных: регулятор Mega Resources,
// три подрядчика, четыре шаблона требований, шесть проектов и пять загрузок.
package repository

import (
	"time"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

const plirejection = "The uploaded document expired in 2024. Please provide the current certificate."

// DemoSeed возвращает демонстрационный набор данных.
// Каждый вызов возвращает независимую копию.
func DemoSeed() Seed {
	return Seed{
		Organizations: []model.Organization{
			{
				ID: 1, Type: model.OrgTypeRegulator, Name: "Mega Resources",
				ABN: "11 111 111 111", Address: "1 test Rd, Perth WA 6000", Phone: "1300 0000",
				Services: "Mining Compliance Management", Status: model.OrgStatusActive,
				CreatedAt: day(2020, 1, 1), LastActivity: day(2025, 12, 3),
			},
			{
				ID: 101, Type: model.OrgTypeContractor, Name: "TWS",
				ABN: "12 123 123 123", Address: "1 test St, Perth WA 6000", Phone: "0450 123 456",
				Services: "WHO, Safety Training", Status: model.OrgStatusActive,
				CreatedAt: day(2025, 1, 15), LastActivity: day(2025, 12, 1),
			},
			{
				ID: 102, Type: model.OrgTypeContractor, Name: "SalesForce",
				ABN: "12 333 444 555", Address: "2 test St, Perth WA 6000", Phone: "0450 789 012",
				Services: "Drilling, Excavation", Status: model.OrgStatusActive,
				CreatedAt: day(2025, 1, 20), LastActivity: day(2025, 12, 1),
			},
			{
				ID: 103, Type: model.OrgTypeContractor, Name: "AWS",
				ABN: "12 555 666 777", Address: "3 test St, Perth WA 6000", Phone: "0450 345 678",
				Services: "Cloud Computing", Status: model.OrgStatusInactive,
				CreatedAt: day(2024, 6, 1), LastActivity: day(2024, 12, 15),
			},
		},
		Users: []model.User{
			{
				ID: 1, OrgID: 1, Email: "admin@admin.com.au", FullName: "Mega Admin",
				Role: model.RoleMegaAdmin, Avatar: "Mason", Phone: "0450 123 456", IsActive: true,
			},
			{
				ID: 2, OrgID: 101, Email: "test1@tws.com.au", FullName: "Jack Deng",
				Role: model.RoleContractorUser, Avatar: "Liam", IsActive: true,
			},
			{
				ID: 3, OrgID: 102, Email: "test2@tws.com.au", FullName: "Sarah Jones",
				Role: model.RoleContractorUser, Avatar: "Sarah", IsActive: true,
			},
		},
		Templates: []model.RequirementTemplate{
			{
				ID: "TPL-PLI", Type: model.TemplateCompliance, Title: "Public Liability Insurance",
				Description: "Please upload your renewed Public Liability Insurance certificate (min $20M).",
				Frequency:   model.FrequencyAnnual, MandatoryForAll: true, CreatedAt: day(2024, 1, 1),
			},
			{
				ID: "TPL-WHS", Type: model.TemplateCompliance, Title: "WHS Management Plan",
				Description: "Operational Health and Safety Plan.",
				Frequency:   model.FrequencyAnnual, MandatoryForAll: true, CreatedAt: day(2024, 1, 1),
			},
			{
				ID: "TPL-WSR", Type: model.TemplateReporting, Title: "Weekly Safety Report",
				Description: "Standard weekly reporting template. Please upload files.",
				Frequency:   model.FrequencyWeekly, MandatoryForAll: true, CreatedAt: day(2024, 1, 1),
			},
			{
				ID: "TPL-MEA", Type: model.TemplateReporting, Title: "Monthly Environmental Audit",
				Description: "Monthly environmental impact assessment.",
				Frequency:   model.FrequencyMonthly, MandatoryForAll: true, CreatedAt: day(2024, 1, 1),
			},
		},
		Projects: []model.ComplianceProject{
			{
				ID: "P-TWS-PLI-2025", TemplateID: "TPL-PLI", OrgID: 101,
				DisplayName: "Public Liability Insurance", Status: model.ProjectRejected,
				CurrentFileRecordID: ptr("FR-TWS-PLI-001"), DueDate: day(2025, 11, 1),
				CreatedAt: day(2025, 1, 15), UpdatedAt: day(2025, 10, 26),
				RejectionReason: ptr(plirejection),
			},
			{
				ID: "P-TWS-WHS-2025", TemplateID: "TPL-WHS", OrgID: 101,
				DisplayName: "WHS Management Plan", Status: model.ProjectApproved,
				CurrentFileRecordID: ptr("FR-TWS-WHS-001"), DueDate: day(2025, 11, 1),
				CreatedAt: day(2025, 1, 15), UpdatedAt: day(2025, 11, 15),
			},
			{
				ID: "P-TWS-WSR-W42", TemplateID: "TPL-WSR", OrgID: 101,
				DisplayName: "Weekly Safety Report - Week 42", Status: model.ProjectApproved,
				CurrentFileRecordID: ptr("FR-TWS-WSR-W42-001"), DueDate: day(2025, 10, 27),
				CreatedAt: day(2025, 10, 20), UpdatedAt: day(2025, 10, 24),
			},
			{
				ID: "P-TWS-WSR-W43", TemplateID: "TPL-WSR", OrgID: 101,
				DisplayName: "Weekly Safety Report - Week 43", Status: model.ProjectPending,
				DueDate: day(2025, 11, 3), CreatedAt: day(2025, 10, 27), UpdatedAt: day(2025, 10, 27),
			},
			{
				ID: "P-TWS-MEA-NOV", TemplateID: "TPL-MEA", OrgID: 101,
				DisplayName: "Monthly Environmental Audit - November", Status: model.ProjectPending,
				DueDate: day(2025, 12, 1), CreatedAt: day(2025, 11, 1), UpdatedAt: day(2025, 11, 1),
			},
			{
				ID: "P-SLS-PLI-2025", TemplateID: "TPL-PLI", OrgID: 102,
				DisplayName: "Public Liability Insurance", Status: model.ProjectPendingReview,
				CurrentFileRecordID: ptr("FR-SLS-PLI-001"), DueDate: day(2025, 11, 30),
				CreatedAt: day(2025, 1, 20), UpdatedAt: day(2025, 11, 1),
			},
		},
		FileRecords: []model.FileRecord{
			{
				ID: "FR-TWS-PLI-002", ProjectID: "P-TWS-PLI-2025", UploadedBy: 2,
				FileName: "PLI_Certificate_2023.pdf", FileURL: "/mock/uploads/tws/PLI_Certificate_2023.pdf",
				UploadDate: at(2025, 9, 15, 10, 20), Notes: "Previous year certificate",
				Status: model.FileStatusApproved, ReviewedBy: ptr(int64(1)), ReviewedAt: ptr(at(2025, 9, 16, 9, 30)),
			},
			{
				ID: "FR-TWS-PLI-001", ProjectID: "P-TWS-PLI-2025", UploadedBy: 2,
				FileName: "PLI_Certificate_2024.pdf", FileURL: "/mock/uploads/tws/PLI_Certificate_2024.pdf",
				UploadDate: at(2025, 10, 25, 14, 32), Notes: "Public Liability Insurance certificate for 2024-2025",
				Status: model.FileStatusRejected, Feedback: ptr(plirejection),
				ReviewedBy: ptr(int64(1)), ReviewedAt: ptr(at(2025, 10, 26, 9, 15)),
			},
			{
				ID: "FR-TWS-WHS-001", ProjectID: "P-TWS-WHS-2025", UploadedBy: 2,
				FileName: "WHS_Management_Plan_2025.pdf", FileURL: "/mock/uploads/tws/WHS_Management_Plan_2025.pdf",
				UploadDate: at(2025, 11, 15, 9, 45), Notes: "Updated WHS plan for 2025 operations",
				Status: model.FileStatusApproved, Feedback: ptr("All safety procedures are comprehensive and approved."),
				ReviewedBy: ptr(int64(1)), ReviewedAt: ptr(at(2025, 11, 15, 14, 20)),
			},
			{
				ID: "FR-TWS-WSR-W42-001", ProjectID: "P-TWS-WSR-W42", UploadedBy: 2,
				FileName: "Safety_Report_Week42.pdf", FileURL: "/mock/uploads/tws/Safety_Report_Week42.pdf",
				UploadDate: at(2025, 10, 24, 16, 15), Notes: "Weekly safety report - no incidents recorded",
				Status: model.FileStatusApproved, Feedback: ptr("Report accepted. Good safety record."),
				ReviewedBy: ptr(int64(1)), ReviewedAt: ptr(at(2025, 10, 25, 8, 45)),
			},
			{
				ID: "FR-SLS-PLI-001", ProjectID: "P-SLS-PLI-2025", UploadedBy: 3,
				FileName: "PLI_Certificate_SalesForce_2025.pdf", FileURL: "/mock/uploads/salesforce/PLI_Certificate_SalesForce_2025.pdf",
				UploadDate: at(2025, 11, 1, 11, 30), Notes: "Public Liability Insurance for SalesForce",
				Status: model.FileStatusPendingReview,
			},
		},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
