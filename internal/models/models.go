package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/domain"
)

// Vessel is the tenant boundary. Deactivation is soft; a deactivated vessel
// keeps its users and requisitions.
type Vessel struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	IMONumber  *string        `gorm:"column:imo_number;uniqueIndex" json:"imo_number"`
	Flag       *string        `json:"flag"`
	VesselType *string        `json:"vessel_type"`
	Email      *string        `json:"email"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	Users      []User         `gorm:"foreignKey:VesselID" json:"-"`
}

// User belongs to exactly one vessel for its lifetime. VesselID is null only
// for super_admin accounts.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	FullName     string         `gorm:"size:100" json:"full_name"`
	Role         string         `gorm:"size:20;not null" json:"role"`
	PasswordHash string         `gorm:"not null" json:"-"`
	VesselID     *uint          `json:"vessel_id"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	Vessel       *Vessel        `gorm:"foreignKey:VesselID" json:"-"`
}

// Company is a shared global directory entry. A company may be a
// manufacturer, a supplier, or both.
type Company struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"not null" json:"name"`
	Website        *string        `json:"website"`
	Email          *string        `json:"email"`
	Phone          *string        `json:"phone"`
	Comments       *string        `json:"comments"`
	LogoPath       *string        `json:"logo_path"`
	IsManufacturer bool           `gorm:"not null;default:false" json:"is_manufacturer"`
	IsSupplier     bool           `gorm:"not null;default:false" json:"is_supplier"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
}

// Category groups catalogue items.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// Tag is a label attachable to items.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Slug  string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Color string `gorm:"size:7;default:#6b7280" json:"color"`
	Items []Item `gorm:"many2many:item_tags" json:"-"`
}

// Item is a global catalogue entry. IsActive is the super_admin controlled
// global flag; per-vessel visibility lives in VesselItem overrides and is
// surfaced through the VesselActive field, which is not persisted on the item
// row itself.
type Item struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"not null" json:"name"`
	DescShort      *string        `json:"desc_short"`
	Description    *string        `json:"description"`
	CatalogueNr    *string        `json:"catalogue_nr"`
	Unit           string         `gorm:"not null" json:"unit"`
	ImagePath      *string        `json:"image_path"`
	ManufacturerID *uint          `json:"manufacturer_id"`
	SupplierID     *uint          `json:"supplier_id"`
	CategoryID     *uint          `json:"category_id"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	VesselActive   bool           `gorm:"-" json:"vessel_active"`
	Manufacturer   *Company       `gorm:"foreignKey:ManufacturerID" json:"manufacturer,omitempty"`
	Supplier       *Company       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Category       *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags           []Tag          `gorm:"many2many:item_tags" json:"tags"`
}

// VesselItem is the per-vessel visibility override. No row means the item is
// visible for that vessel; a row is created the first time a captain toggles
// the item off.
type VesselItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	VesselID uint `gorm:"not null;uniqueIndex:uq_vessel_item" json:"vessel_id"`
	ItemID   uint `gorm:"not null;uniqueIndex:uq_vessel_item" json:"item_id"`
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}

// Requisition is the purchase request aggregate root. Version backs the
// optimistic concurrency check on every mutation.
type Requisition struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `gorm:"index" json:"-"`
	VesselID   uint              `gorm:"not null;index" json:"vessel_id"`
	SupplierID *uint             `json:"supplier_id"`
	Status     domain.Status     `gorm:"size:30;not null;default:draft" json:"status"`
	Notes      *string           `json:"notes"`
	OrderedAt  *time.Time        `json:"ordered_at"`
	CreatedBy  uuid.UUID         `gorm:"type:uuid;not null" json:"created_by"`
	Version    int               `gorm:"not null;default:1" json:"version"`
	Supplier   *Company          `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items      []RequisitionItem `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE" json:"items"`
}

// RequisitionItem is a single line. Lines are exclusively owned by their
// requisition and never referenced independently.
type RequisitionItem struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	RequisitionID uint  `gorm:"not null;index" json:"requisition_id"`
	ItemID        uint  `gorm:"not null" json:"item_id"`
	Quantity      int   `gorm:"not null" json:"quantity"`
	ReceivedQty   int   `gorm:"not null;default:0" json:"received_qty"`
	Item          *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// Lines maps the requisition's items onto the quantity view the lifecycle
// rules operate on.
func (r *Requisition) Lines() []domain.Line {
	lines := make([]domain.Line, len(r.Items))
	for i, item := range r.Items {
		lines[i] = domain.Line{Ordered: item.Quantity, Received: item.ReceivedQty}
	}
	return lines
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Vessel{},
		&User{},
		&Company{},
		&Category{},
		&Tag{},
		&Item{},
		&VesselItem{},
		&Requisition{},
		&RequisitionItem{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
