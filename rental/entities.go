package rental

import (
	"github.com/kjk/rentman/order"
)

// Property is a rented house or flat
type Property struct {
	// line number the record was read from, 0 if not stored yet
	RecordNumber int

	ID          int
	Age         int
	Bedrooms    int
	LivingRooms int
	Floors      int
	Size        int
	Address     string
}

func (p *Property) Number() int  { return p.RecordNumber }
func (p *Property) SortKey() int { return p.ID }

// Tenant is a person renting a property
type Tenant struct {
	RecordNumber int

	ID         int
	PropertyID int
	Rent       int
	BirthDate  string
	Name       string
	Surname    string
}

func (t *Tenant) Number() int  { return t.RecordNumber }
func (t *Tenant) SortKey() int { return t.ID }

// Rent is the rent debt of a tenant
type Rent struct {
	RecordNumber int

	TenantID int
	Debt     int
	DueDate  string
}

func (r *Rent) Number() int  { return r.RecordNumber }
func (r *Rent) SortKey() int { return r.TenantID }

// Maintenance is planned work on a property
type Maintenance struct {
	RecordNumber int

	PropertyID int
	Cost       int
	Priority   int
	Type       string
	Date       string
}

func (m *Maintenance) Number() int  { return m.RecordNumber }
func (m *Maintenance) SortKey() int { return m.Priority }

// Properties are stored in property_records.txt, sorted by ID
var Properties = &Kind[*Property]{
	Name:     "property",
	FileName: "property_records.txt",
	KeyLabel: "Property ID",
	Fields: []Field{
		{Label: "Property ID", Flag: "id", Int: true},
		{Label: "Property Age", Flag: "age", Int: true},
		{Label: "Bedrooms", Flag: "bedrooms", Int: true},
		{Label: "Living Rooms", Flag: "living-rooms", Int: true},
		{Label: "Floors", Flag: "floors", Int: true},
		{Label: "Size", Flag: "size", Int: true},
		{Label: "Address", Flag: "address"},
	},
	Sort: order.QuickSort[*Property],
	encode: func(p *Property) []any {
		return []any{
			"Property ID", p.ID,
			"Property Age", p.Age,
			"Bedrooms", p.Bedrooms,
			"Living Rooms", p.LivingRooms,
			"Floors", p.Floors,
			"Size", p.Size,
			"Address", p.Address,
		}
	},
	decode: func(n int, d *decoder) *Property {
		return &Property{
			RecordNumber: n,
			ID:           d.int("Property ID"),
			Age:          d.int("Property Age"),
			Bedrooms:     d.int("Bedrooms"),
			LivingRooms:  d.int("Living Rooms"),
			Floors:       d.int("Floors"),
			Size:         d.int("Size"),
			Address:      d.str("Address"),
		}
	},
}

// Tenants are stored in tenant_records.txt, sorted by ID
var Tenants = &Kind[*Tenant]{
	Name:     "tenant",
	FileName: "tenant_records.txt",
	KeyLabel: "Tenant ID",
	Fields: []Field{
		{Label: "Tenant ID", Flag: "id", Int: true},
		{Label: "Property ID", Flag: "property-id", Int: true},
		{Label: "Rent", Flag: "rent", Int: true},
		{Label: "Birth Date", Flag: "birth-date"},
		{Label: "Name", Flag: "name"},
		{Label: "Surname", Flag: "surname"},
	},
	Sort: order.QuickSort[*Tenant],
	encode: func(t *Tenant) []any {
		return []any{
			"Tenant ID", t.ID,
			"Property ID", t.PropertyID,
			"Rent", t.Rent,
			"Birth Date", t.BirthDate,
			"Name", t.Name,
			"Surname", t.Surname,
		}
	},
	decode: func(n int, d *decoder) *Tenant {
		return &Tenant{
			RecordNumber: n,
			ID:           d.int("Tenant ID"),
			PropertyID:   d.int("Property ID"),
			Rent:         d.int("Rent"),
			BirthDate:    d.str("Birth Date"),
			Name:         d.str("Name"),
			Surname:      d.str("Surname"),
		}
	},
}

// Rents are stored in rent_records.txt, sorted by tenant ID
var Rents = &Kind[*Rent]{
	Name:     "rent",
	FileName: "rent_records.txt",
	KeyLabel: "Tenant ID",
	Fields: []Field{
		{Label: "Tenant ID", Flag: "tenant-id", Int: true},
		{Label: "Current Rent Debt", Flag: "debt", Int: true},
		{Label: "Due Date", Flag: "due-date"},
	},
	Sort: order.QuickSort[*Rent],
	encode: func(r *Rent) []any {
		return []any{
			"Tenant ID", r.TenantID,
			"Current Rent Debt", r.Debt,
			"Due Date", r.DueDate,
		}
	},
	decode: func(n int, d *decoder) *Rent {
		return &Rent{
			RecordNumber: n,
			TenantID:     d.int("Tenant ID"),
			Debt:         d.int("Current Rent Debt"),
			DueDate:      d.str("Due Date"),
		}
	},
}

// Maintenances are stored in maintenance_records.txt, sorted by
// priority and displayed highest priority first
var Maintenances = &Kind[*Maintenance]{
	Name:     "maintenance",
	FileName: "maintenance_records.txt",
	KeyLabel: "Priority",
	Fields: []Field{
		{Label: "Property ID", Flag: "property-id", Int: true},
		{Label: "Cost", Flag: "cost", Int: true},
		{Label: "Priority", Flag: "priority", Int: true},
		{Label: "Maintenance Type", Flag: "type"},
		{Label: "Expected Maintenance Date", Flag: "date"},
	},
	Sort:       order.HeapSort[*Maintenance],
	Descending: true,
	encode: func(m *Maintenance) []any {
		return []any{
			"Property ID", m.PropertyID,
			"Cost", m.Cost,
			"Priority", m.Priority,
			"Maintenance Type", m.Type,
			"Expected Maintenance Date", m.Date,
		}
	},
	decode: func(n int, d *decoder) *Maintenance {
		return &Maintenance{
			RecordNumber: n,
			PropertyID:   d.int("Property ID"),
			Cost:         d.int("Cost"),
			Priority:     d.int("Priority"),
			Type:         d.str("Maintenance Type"),
			Date:         d.str("Expected Maintenance Date"),
		}
	},
}
