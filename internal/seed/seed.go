// Package seed carries the fixed legacy datasets: mock applications merged
// into backoffice listings and the local fallback invoice amounts the bridge
// resolves to when the external system is unreachable.
package seed

import (
	"time"

	"github.com/nazrin/tadikahub/internal/app/models"
)

// MockApplications returns the legacy application records, tagged
// source=mock. They are read-only: review actions only apply to persisted
// applications.
func MockApplications() []models.RegistrationApplication {
	reviewed := time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)

	return []models.RegistrationApplication{
		{
			ID:              "mock-0001",
			ApplicationRef:  "APP-2025-90001",
			Source:          models.SourceMock,
			StudentName:     "Nur Aisyah binti Rahman",
			StudentIC:       "210404-14-0422",
			DateOfBirth:     "2021-04-04",
			GuardianName:    "Rahman bin Yusof",
			GuardianIC:      "880112-14-5523",
			GuardianPhone:   "012-3456789",
			CentreID:        "CTR-001",
			CentreName:      "Tadika Seri Indah",
			EducationLevel:  "preschool",
			SubsidyCategory: "B40",
			Status:          models.StatusApproved,
			AppliedDate:     time.Date(2025, 3, 2, 9, 15, 0, 0, time.UTC),
			ReviewedDate:    &reviewed,
			ReviewedBy:      "Puan Salmah",
		},
		{
			ID:             "mock-0002",
			ApplicationRef: "APP-2025-90002",
			Source:         models.SourceMock,
			StudentName:    "Lim Jia Hao",
			StudentIC:      "200918-10-1277",
			DateOfBirth:    "2020-09-18",
			GuardianName:   "Lim Wei Sheng",
			GuardianIC:     "850623-10-6611",
			GuardianPhone:  "017-8845120",
			CentreID:       "CTR-002",
			CentreName:     "Taska Ceria",
			EducationLevel: "nursery",
			Status:         models.StatusEnrolled,
			AppliedDate:    time.Date(2025, 1, 20, 14, 5, 0, 0, time.UTC),
		},
		{
			ID:             "mock-0003",
			ApplicationRef: "APP-2024-90147",
			Source:         models.SourceMock,
			StudentName:    "Arjun a/l Suresh",
			StudentIC:      "190730-08-3391",
			DateOfBirth:    "2019-07-30",
			GuardianName:   "Suresh a/l Kumar",
			GuardianIC:     "820215-08-7743",
			GuardianPhone:  "019-2271834",
			CentreID:       "CTR-001",
			CentreName:     "Tadika Seri Indah",
			EducationLevel: "preschool",
			Status:         models.StatusUnderReview,
			AppliedDate:    time.Date(2024, 11, 8, 11, 40, 0, 0, time.UTC),
		},
	}
}

// fallbackAmounts is the local stand-in for the external finance system.
var fallbackAmounts = map[string]models.InvoiceAmountRecord{
	"INV-2025-0101": {
		InvoiceNumber: "INV-2025-0101",
		Amount:        480.00,
		SubsidyAmount: 180.00,
		PenaltyAmount: 0,
		NetAmount:     300.00,
		UpdatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:    "STU-0101",
		CustomerName:  "Nur Aisyah binti Rahman",
	},
	"INV-2025-0102": {
		InvoiceNumber: "INV-2025-0102",
		Amount:        480.00,
		SubsidyAmount: 0,
		PenaltyAmount: 24.00,
		NetAmount:     504.00,
		UpdatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:    "STU-0102",
		CustomerName:  "Lim Jia Hao",
	},
}

// FallbackInvoiceAmount resolves one invoice number against the local
// dataset. Unknown numbers get a zero-balance snapshot so the read path
// always produces an answer.
func FallbackInvoiceAmount(invoiceNumber string) models.InvoiceAmountRecord {
	if rec, ok := fallbackAmounts[invoiceNumber]; ok {
		return rec
	}
	return models.InvoiceAmountRecord{
		InvoiceNumber: invoiceNumber,
		UpdatedAt:     time.Now(),
	}
}
