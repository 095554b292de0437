package providers

import (
	"strconv"
	"time"

	"github.com/nazrin/tadikahub/internal/app/models"
)

// The legacy database carries two column-naming conventions: the primary
// snake_case/camelCase scheme and an older PascalCase scheme from a previous
// table layout. Both are first-class; each field is resolved by trying its
// candidates in order.
var (
	invoiceNumberCols = []string{"invoice_number", "invoiceNumber", "InvoiceNumber", "InvoiceNo"}
	amountCols        = []string{"amount", "invoiceAmount", "Amount", "InvoiceAmount"}
	subsidyCols       = []string{"subsidy_amount", "subsidyAmount", "SubsidyAmount"}
	penaltyCols       = []string{"penalty_amount", "penaltyAmount", "PenaltyAmount"}
	netCols           = []string{"net_amount", "netAmount", "NetAmount"}
	updatedAtCols     = []string{"updated_at", "updatedAt", "UpdatedAt", "LastUpdated"}
	customerIDCols    = []string{"customer_id", "customerId", "CustomerID", "CustomerId", "StudentID"}
	customerNameCols  = []string{"customer_name", "customerName", "CustomerName", "StudentName"}
)

// mapRowToRecord converts one result row into the canonical record shape.
func mapRowToRecord(row map[string]interface{}) models.InvoiceAmountRecord {
	return models.InvoiceAmountRecord{
		InvoiceNumber: pickString(row, invoiceNumberCols),
		Amount:        pickFloat(row, amountCols),
		SubsidyAmount: pickFloat(row, subsidyCols),
		PenaltyAmount: pickFloat(row, penaltyCols),
		NetAmount:     pickFloat(row, netCols),
		UpdatedAt:     pickTime(row, updatedAtCols),
		CustomerID:    pickString(row, customerIDCols),
		CustomerName:  pickString(row, customerNameCols),
	}
}

func pickString(row map[string]interface{}, candidates []string) string {
	for _, col := range candidates {
		if v, ok := row[col]; ok && v != nil {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func pickFloat(row map[string]interface{}, candidates []string) float64 {
	for _, col := range candidates {
		if v, ok := row[col]; ok && v != nil {
			if f, ok := asFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

func pickTime(row map[string]interface{}, candidates []string) time.Time {
	for _, col := range candidates {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return t
		case []byte:
			if parsed, err := time.Parse("2006-01-02 15:04:05", string(t)); err == nil {
				return parsed
			}
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int64:
		return float64(f), true
	case []byte:
		parsed, err := strconv.ParseFloat(string(f), 64)
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(f, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
