package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SchemaMigration records an applied schema version.
type SchemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null"`
	AppliedAt time.Time
}

func (m *SchemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// Table shapes as of the migration that created them. Later migrations alter
// these tables through the current models.

type categoryV1 struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"uniqueIndex;not null"`
	Icon      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (categoryV1) TableName() string { return "categories" }

type productV1 struct {
	ID         string          `gorm:"primaryKey;size:64"`
	Title      string          `gorm:"not null"`
	CategoryID string          `gorm:"column:category;not null;index"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Image      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (productV1) TableName() string { return "products" }

type orderV2 struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Tax       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"index"`
}

func (orderV2) TableName() string { return "orders" }

type orderItemV2 struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	OrderID     uint            `gorm:"not null;index"`
	Order       *orderV2        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ProductID   *string         `gorm:"size:64;index"`
	Product     *productV1      `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `gorm:"index"`
}

func (orderItemV2) TableName() string { return "order_items" }

type shopSettingsV4 struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Logo      string
	Address   string
	Phone     string
	UpdatedAt time.Time
}

func (shopSettingsV4) TableName() string { return "shop_settings" }

type adminV4 struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (adminV4) TableName() string { return "admins" }

// migrations must stay sorted by version. Never edit an applied entry; append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "create catalog tables",
		up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&categoryV1{}, &productV1{})
		},
	},
	{
		version: 2,
		name:    "create order tables",
		up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&orderV2{}, &orderItemV2{})
		},
	},
	{
		version: 3,
		name:    "add discount and payment method to orders",
		up: func(tx *gorm.DB) error {
			m := tx.Migrator()
			if err := m.AddColumn(&Order{}, "Discount"); err != nil {
				return err
			}
			return m.AddColumn(&Order{}, "PaymentMethod")
		},
	},
	{
		version: 4,
		name:    "create settings and admin tables",
		up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&shopSettingsV4{}, &adminV4{})
		},
	},
}

// Migrate applies every migration newer than the stored schema version, each in
// its own transaction, and returns how many were applied.
func Migrate(ctx context.Context, db *gorm.DB) (int, error) {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, storageErr("create schema_migrations", err)
	}

	var versions []int
	if err := db.Model(&SchemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return 0, storageErr("read schema version", err)
	}
	done := make(map[int]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}

	applied := 0
	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return applied, storageErr("apply migration "+m.name, err)
		}
		applied++
	}
	return applied, nil
}

// SchemaVersion returns the highest applied migration version, 0 for an empty database.
func SchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var version int
	err := db.WithContext(ctx).
		Model(&SchemaMigration{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, storageErr("read schema version", err)
	}
	return version, nil
}
