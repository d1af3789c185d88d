// Package warehouses manages the depot ("depo") definitions listed on the
// stock definitions screen.
package warehouses

import (
	"context"
	"errors"
	"strings"

	"zupos_panel/internal/table"
)

const (
	StatusActive  = "Aktif"
	StatusPassive = "Pasif"
)

// DefaultTransferType is used when a depot is created without one.
const DefaultTransferType = "Reçeteli Mamul"

var (
	ErrNotFound      = errors.New("warehouse not found")
	ErrDuplicateCode = errors.New("warehouse code already exists")
	ErrDuplicateName = errors.New("warehouse name already exists")
	ErrInvalid       = errors.New("invalid warehouse")
)

// Warehouse is one depot definition.
type Warehouse struct {
	ID           int64  `json:"id"`
	Name         string `json:"ad"`
	Code         string `json:"kod"`
	TransferType string `json:"devirTipi"`
	Status       string `json:"durum"`
}

// Row exposes the depot to the list table.
func (w Warehouse) Row() table.Row {
	return table.Row{
		"id":        w.ID,
		"ad":        w.Name,
		"kod":       w.Code,
		"devirTipi": w.TransferType,
		"durum":     w.Status,
	}
}

// Rows converts a list for the table.
func Rows(list []Warehouse) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, w := range list {
		rows = append(rows, w.Row())
	}
	return rows
}

// Repository stores depot definitions. List returns depots in creation
// order.
type Repository interface {
	List(ctx context.Context) ([]Warehouse, error)
	Create(ctx context.Context, w Warehouse) (Warehouse, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

// Normalize trims the fields, fills defaults and checks required fields.
func Normalize(w Warehouse) (Warehouse, error) {
	w.Name = strings.TrimSpace(w.Name)
	w.Code = strings.TrimSpace(w.Code)
	w.TransferType = strings.TrimSpace(w.TransferType)
	w.Status = strings.TrimSpace(w.Status)

	if w.Name == "" || w.Code == "" {
		return w, errors.Join(ErrInvalid, errors.New("name and code are required"))
	}
	if w.TransferType == "" {
		w.TransferType = DefaultTransferType
	}
	switch w.Status {
	case "":
		w.Status = StatusActive
	case StatusActive, StatusPassive:
	default:
		return w, errors.Join(ErrInvalid, errors.New("status must be Aktif or Pasif"))
	}
	return w, nil
}

// Seed is the initial set of depots for the in-memory repository.
func Seed() []Warehouse {
	return []Warehouse{
		{Name: "AEVERV", Code: "AERGV", TransferType: DefaultTransferType, Status: StatusActive},
		{Name: "AFRBF", Code: "ERAVFV", TransferType: DefaultTransferType, Status: StatusActive},
		{Name: "AVVB", Code: "AFBADR", TransferType: DefaultTransferType, Status: StatusActive},
		{Name: "Deneme3hhhh", Code: "4555", TransferType: DefaultTransferType, Status: StatusPassive},
		{Name: "fjgckc", Code: "kcghkm", TransferType: DefaultTransferType, Status: StatusActive},
		{Name: "THGSRT", Code: "RTH", TransferType: DefaultTransferType, Status: StatusActive},
	}
}
