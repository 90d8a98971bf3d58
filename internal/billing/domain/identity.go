package billing

import (
	"strconv"
	"strings"
)

const propertyCodeLength = 7

// PropertyKey derives the property (predio) an invoice belongs to. The
// first rule that yields a value wins:
//
//	lot_code with '-'   -> prefix before the first '-', cut to 7 characters
//	lot_code >= 7 chars -> first 7 characters
//	lot_code non-empty  -> lot_code
//	property_id         -> property_id
//	client_document     -> "predio_" + client_document
//	otherwise           -> "predio_" + row index
func PropertyKey(inv Invoice, rowIndex int) string {
	lotCode := strings.TrimSpace(inv.LotCode)
	if idx := strings.Index(lotCode, "-"); idx >= 0 {
		prefix := lotCode[:idx]
		if len(prefix) >= propertyCodeLength {
			return prefix[:propertyCodeLength]
		}
		if prefix != "" {
			return prefix
		}
	}
	if len(lotCode) >= propertyCodeLength {
		return lotCode[:propertyCodeLength]
	}
	if lotCode != "" {
		return lotCode
	}
	if id := strings.TrimSpace(inv.PropertyID); id != "" {
		return id
	}
	if doc := strings.TrimSpace(inv.ClientDocument); doc != "" {
		return "predio_" + doc
	}
	return "predio_" + strconv.Itoa(rowIndex)
}

// LotKey derives the lot an invoice belongs to.
func LotKey(inv Invoice, rowIndex int) string {
	if code := strings.TrimSpace(inv.LotCode); code != "" {
		return code
	}
	if lot := strings.TrimSpace(inv.Lot); lot != "" {
		return lot
	}
	return "lote_" + strconv.Itoa(rowIndex)
}

// UserKey derives the billed user of an invoice.
func UserKey(inv Invoice, rowIndex int) string {
	if doc := strings.TrimSpace(inv.ClientDocument); doc != "" {
		return doc
	}
	if name := strings.TrimSpace(inv.ClientName); name != "" {
		return strings.ToLower(name)
	}
	return "usuario_" + strconv.Itoa(rowIndex)
}
