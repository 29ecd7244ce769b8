package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex:ux_roles_name"`
}

func (Role) TableName() string { return "roles" }

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Role     Role      `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	FullName string    `gorm:"type:text;not null"`
	Login    string    `gorm:"type:text;not null;uniqueIndex:ux_users_login"`
	Password string    `gorm:"type:text;not null"` // plain or bcrypt, depending on PASSWORD_SCHEME

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex:ux_categories_name"`
}

func (Category) TableName() string { return "categories" }

type Manufacturer struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex:ux_manufacturers_name"`
}

func (Manufacturer) TableName() string { return "manufacturers" }

type Supplier struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex:ux_suppliers_name"`
}

func (Supplier) TableName() string { return "suppliers" }

type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Article  string          `gorm:"type:text;not null;uniqueIndex:ux_products_article"`
	Name     string          `gorm:"type:text;not null"`
	Unit     string          `gorm:"type:text;not null;default:'шт.'"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount int             `gorm:"type:int;not null;default:0"` // percent, CHECK 0..100 in migration
	// nil means stock is not tracked for this product
	StockQuantity *int    `gorm:"type:int"`
	Description   *string `gorm:"type:text"`
	Photo         *string `gorm:"type:text"` // file name only

	CategoryID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	Category       Category     `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	ManufacturerID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Manufacturer   Manufacturer `gorm:"foreignKey:ManufacturerID;constraint:OnDelete:RESTRICT"`
	SupplierID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	Supplier       Supplier     `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type OrderStatus struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex:ux_order_statuses_name"`
}

func (OrderStatus) TableName() string { return "order_statuses" }

type Order struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber  string     `gorm:"type:text;not null;uniqueIndex:ux_orders_number"`
	OrderDate    time.Time  `gorm:"not null;index"`
	DeliveryDate *time.Time // CHECK delivery_date >= order_date in migration
	PickupCode   *string    `gorm:"type:text"`

	StatusID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status   OrderStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT"`
	UserID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	User     User        `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

type OrderLine struct {
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;primaryKey;index"`
	Product   Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int             `gorm:"type:int;not null"` // CHECK > 0 in migration
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderLine) TableName() string { return "order_lines" }

// WebSession backs the browser session store when Redis is disabled.
type WebSession struct {
	ID         string    `gorm:"type:text;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Login      string    `gorm:"type:text;not null"`
	Role       string    `gorm:"type:text;not null"`
	FullName   string    `gorm:"type:text;not null"`
	IssuedAt   time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"` // absolute, equal to claims expiry
	LastSeenAt time.Time `gorm:"not null;index"`
	Revoked    bool      `gorm:"not null;default:false;index"`
}

func (WebSession) TableName() string { return "web_sessions" }
