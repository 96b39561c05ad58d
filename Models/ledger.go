package Models

import (
	"context"
	"fmt"
	"strings"

	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/gorm"
)

// Where a trip's supplier or material name came from.
const (
	SourceReferenced = "referenced"
	SourceFreeform   = "freeform"
)

// TripLedger is a trip together with its derived settlement.
type TripLedger struct {
	Trip
	Finance.Settlement
	SupplierSource string `json:"supplier_source"`
	MaterialSource string `json:"material_source"`
}

// NewTripLedger derives the settlement from t.Payments.
func NewTripLedger(t Trip) TripLedger {
	return TripLedger{Trip: t, Settlement: t.Settlement()}
}

func (l TripLedger) ScopeRecord() Scope.Record {
	return Dated(Scope.Record{
		TruckID:    l.TruckID,
		Client:     l.Client,
		Supplier:   l.Supplier,
		HasParties: true,
	}, l.TripDate, l.CreatedAt)
}

func (p Payment) ScopeRecord() Scope.Record {
	var r Scope.Record
	if p.Trip != nil {
		r.TruckID = p.Trip.TruckID
		r.Client = p.Trip.Client
		r.Supplier = p.Trip.Supplier
		r.HasParties = true
	}
	return Dated(r, p.PaymentDate, p.CreatedAt)
}

func (e Expense) ScopeRecord() Scope.Record {
	return Dated(Scope.Record{TruckID: e.TruckID}, e.ExpenseDate, e.CreatedAt)
}

func (f FuelExpense) ScopeRecord() Scope.Record {
	return Dated(Scope.Record{TruckID: f.TruckID}, f.ExpenseDate, f.CreatedAt)
}

// OwnedTrucks limits a truck-linked table to the trucks of ownerID.
func OwnedTrucks(db *gorm.DB, ownerID string) func(*gorm.DB) *gorm.DB {
	trucks := db.Session(&gorm.Session{NewDB: true}).Model(&Truck{}).Select("id").Where("owner_id = ?", ownerID)
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("truck_id IN (?)", trucks)
	}
}

// OwnedTrips limits the payments table to trips on the trucks of ownerID.
func OwnedTrips(db *gorm.DB, ownerID string) func(*gorm.DB) *gorm.DB {
	fresh := db.Session(&gorm.Session{NewDB: true})
	trucks := fresh.Model(&Truck{}).Select("id").Where("owner_id = ?", ownerID)
	trips := fresh.Model(&Trip{}).Select("id").Where("truck_id IN (?)", trucks)
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("trip_id IN (?)", trips)
	}
}

// FindTruck returns gorm.ErrRecordNotFound for trucks of other owners.
func FindTruck(ctx context.Context, db *gorm.DB, ownerID, id string) (Truck, error) {
	var truck Truck
	err := db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&truck).Error
	return truck, err
}

// FindTrip loads one owned trip with its truck and payments.
func FindTrip(ctx context.Context, db *gorm.DB, ownerID, id string) (Trip, error) {
	var trip Trip
	err := db.WithContext(ctx).
		Scopes(OwnedTrucks(db, ownerID)).
		Preload("Truck").
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("payment_date ASC") }).
		Where("id = ?", id).
		First(&trip).Error
	return trip, err
}

// LoadTripLedgers returns every trip of the owner, newest first, with settlement and name sources.
func LoadTripLedgers(ctx context.Context, db *gorm.DB, ownerID string) ([]TripLedger, error) {
	var trips []Trip
	err := db.WithContext(ctx).
		Scopes(OwnedTrucks(db, ownerID)).
		Preload("Truck").
		Preload("Payments").
		Order("trip_date DESC, created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}

	suppliers, materials, err := masterNames(ctx, db, ownerID)
	if err != nil {
		return nil, err
	}

	ledgers := make([]TripLedger, len(trips))
	for i, t := range trips {
		ledgers[i] = NewTripLedger(t)
		ledgers[i].SupplierSource = source(suppliers, t.Supplier)
		ledgers[i].MaterialSource = source(materials, t.Material)
	}
	return ledgers, nil
}

// Tag reports whether the trip's supplier and material match master data of the owner.
func (l *TripLedger) Tag(ctx context.Context, db *gorm.DB, ownerID string) error {
	suppliers, materials, err := masterNames(ctx, db, ownerID)
	if err != nil {
		return err
	}
	l.SupplierSource = source(suppliers, l.Supplier)
	l.MaterialSource = source(materials, l.Material)
	return nil
}

func masterNames(ctx context.Context, db *gorm.DB, ownerID string) (suppliers, materials map[string]bool, err error) {
	var names []string
	if err = db.WithContext(ctx).Model(&Supplier{}).Where("owner_id = ?", ownerID).Pluck("name", &names).Error; err != nil {
		return nil, nil, fmt.Errorf("load supplier names: %w", err)
	}
	suppliers = nameSet(names)

	names = nil
	if err = db.WithContext(ctx).Model(&Material{}).Where("owner_id = ?", ownerID).Pluck("name", &names).Error; err != nil {
		return nil, nil, fmt.Errorf("load material names: %w", err)
	}
	return suppliers, nameSet(names), nil
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return set
}

func source(known map[string]bool, name string) string {
	if known[strings.ToLower(strings.TrimSpace(name))] {
		return SourceReferenced
	}
	return SourceFreeform
}

// LoadPayments returns payment records of the owner with their trip and truck.
func LoadPayments(ctx context.Context, db *gorm.DB, ownerID string) ([]Payment, error) {
	var payments []Payment
	err := db.WithContext(ctx).
		Scopes(OwnedTrips(db, ownerID)).
		Preload("Trip.Truck").
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return payments, nil
}

func LoadExpenses(ctx context.Context, db *gorm.DB, ownerID string) ([]Expense, error) {
	var expenses []Expense
	err := db.WithContext(ctx).
		Scopes(OwnedTrucks(db, ownerID)).
		Preload("Truck").
		Order("expense_date DESC, created_at DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return expenses, nil
}

func LoadFuelExpenses(ctx context.Context, db *gorm.DB, ownerID string) ([]FuelExpense, error) {
	var fuel []FuelExpense
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Truck").
		Preload("Pump").
		Preload("Driver").
		Order("expense_date DESC, id DESC").
		Find(&fuel).Error
	if err != nil {
		return nil, fmt.Errorf("load fuel expenses: %w", err)
	}
	return fuel, nil
}

func LoadDrivers(ctx context.Context, db *gorm.DB, ownerID string) ([]Driver, error) {
	var drivers []Driver
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Truck").
		Order("name ASC").
		Find(&drivers).Error
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	return drivers, nil
}

func LoadSuppliers(ctx context.Context, db *gorm.DB, ownerID string) ([]Supplier, error) {
	var suppliers []Supplier
	err := db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&suppliers).Error
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	return suppliers, nil
}
