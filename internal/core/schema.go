package core

import "github.com/jackc/pgx/v5/pgtype"

// CustomerRecord is one parsed customer row. All fields arrive as cleaned
// strings; validation decides whether they are usable.
type CustomerRecord struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	Violations []string `json:"violations,omitempty"`
}

// Valid reports whether the record has no recorded violations.
func (r CustomerRecord) Valid() bool { return len(r.Violations) == 0 }

// OrderRecord is one parsed order row. Cells that are empty or malformed
// carry invalid pgtype values rather than parse errors, so validation can
// report them as missing or out of range.
type OrderRecord struct {
	CustomerID   pgtype.Int4 `json:"customerId"`
	CustomerName pgtype.Text `json:"customerName"`
	Quantity     pgtype.Int4 `json:"quantity"`
	OrderDate    pgtype.Date `json:"orderDate"`

	// ResolvedCustomerID is set by the resolver once the reference is
	// confirmed against the customer snapshot.
	ResolvedCustomerID pgtype.Int4 `json:"resolvedCustomerId"`

	Violations []string `json:"violations,omitempty"`
}

// Valid reports whether the record has no recorded violations.
func (r OrderRecord) Valid() bool { return len(r.Violations) == 0 }

// CustomerSchema maps CSV rows to CustomerRecord.
func CustomerSchema() RecordSchema[CustomerRecord] {
	return RecordSchema[CustomerRecord]{
		Fields: []FieldSpec{
			{Name: "name", Aliases: []string{"name", "customer_name", "full_name"}},
			{Name: "email", Aliases: []string{"email", "email_address"}},
			{Name: "phone", Aliases: []string{"phone", "phone_number", "telephone"}},
			{Name: "address", Aliases: []string{"address", "customer_address", "full_address"}},
		},
		FromRow: func(row []string, idx HeaderIndex) CustomerRecord {
			return CustomerRecord{
				Name:    cell(row, idx, "name"),
				Email:   cell(row, idx, "email"),
				Phone:   cell(row, idx, "phone"),
				Address: cell(row, idx, "address"),
			}
		},
	}
}

// OrderSchema maps CSV rows to OrderRecord.
func OrderSchema() RecordSchema[OrderRecord] {
	return RecordSchema[OrderRecord]{
		Fields: []FieldSpec{
			{Name: "customer_id", Aliases: []string{"customer_id", "customerid"}},
			{Name: "customer_name", Aliases: []string{"customer_name", "customer", "name"}},
			{Name: "quantity", Aliases: []string{"quantity", "qty"}},
			{Name: "order_date", Aliases: []string{"order_date", "date", "orderdate"}},
		},
		FromRow: func(row []string, idx HeaderIndex) OrderRecord {
			return OrderRecord{
				CustomerID:   ToPgInt4(cell(row, idx, "customer_id")),
				CustomerName: ToPgText(cell(row, idx, "customer_name")),
				Quantity:     ToPgInt4(cell(row, idx, "quantity")),
				OrderDate:    ToPgDate(cell(row, idx, "order_date")),
			}
		},
	}
}

// cell returns the cleaned value of a logical field, or "" when the field
// has no mapped column or the row is short.
func cell(row []string, idx HeaderIndex, field string) string {
	pos, ok := idx[field]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}
