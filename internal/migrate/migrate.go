package migrate

import (
	"context"

	"retail-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed names. Roles use the English display names; the Russian ones are
// still understood when read back.
const (
	RoleClient        = "Client"
	RoleManager       = "Manager"
	RoleAdministrator = "Administrator"
	StatusNew         = "New"
)

type MigrateOptions struct {
	CreateExtensions bool // pgcrypto for gen_random_uuid
	CreateChecks     bool
	CreateIndexes    bool
	CreateFKsViaSQL  bool
	SeedReference    bool // roles and the "New" status
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions: true,
		CreateChecks:     true,
		CreateIndexes:    true,
		CreateFKsViaSQL:  true,
		SeedReference:    true,
	}
}

type step struct {
	name string
	sql  string
}

var checkSteps = []step{
	{"chk_order_lines_quantity_gt_zero", `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS chk_order_lines_quantity_gt_zero;
ALTER TABLE order_lines
  ADD CONSTRAINT chk_order_lines_quantity_gt_zero
  CHECK (quantity > 0);
`},
	{"chk_order_lines_price_non_negative", `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS chk_order_lines_price_non_negative;
ALTER TABLE order_lines
  ADD CONSTRAINT chk_order_lines_price_non_negative
  CHECK (price >= 0);
`},
	{"chk_orders_delivery_after_order", `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_delivery_after_order;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_delivery_after_order
  CHECK (delivery_date IS NULL OR delivery_date >= order_date);
`},
	{"chk_products_discount_range", `
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_discount_range;
ALTER TABLE products
  ADD CONSTRAINT chk_products_discount_range
  CHECK (discount BETWEEN 0 AND 100);
`},
	{"chk_products_price_non_negative", `
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_price_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_price_non_negative
  CHECK (price >= 0);
`},
	{"chk_products_stock_non_negative", `
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_stock_non_negative
  CHECK (stock_quantity IS NULL OR stock_quantity >= 0);
`},
}

var indexSteps = []step{
	{"ux_orders_number", `CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_number ON orders (order_number);`},
	{"ux_users_login", `CREATE UNIQUE INDEX IF NOT EXISTS ux_users_login ON users (login);`},
	{"ux_products_article", `CREATE UNIQUE INDEX IF NOT EXISTS ux_products_article ON products (article);`},
	{"ux_order_statuses_name", `CREATE UNIQUE INDEX IF NOT EXISTS ux_order_statuses_name ON order_statuses (name);`},
	{"ix_orders_user_date", `CREATE INDEX IF NOT EXISTS ix_orders_user_date ON orders (user_id, order_date DESC);`},
	{"ix_web_sessions_expiry", `CREATE INDEX IF NOT EXISTS ix_web_sessions_expiry ON web_sessions (expires_at, last_seen_at);`},
}

var fkSteps = []step{
	{"fk_order_lines_order", `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS fk_order_lines_order,
  ADD CONSTRAINT fk_order_lines_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`},
	{"fk_order_lines_product", `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS fk_order_lines_product,
  ADD CONSTRAINT fk_order_lines_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;
`},
	{"fk_orders_user", `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_user,
  ADD CONSTRAINT fk_orders_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT;
`},
	{"fk_orders_status", `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_status,
  ADD CONSTRAINT fk_orders_status
    FOREIGN KEY (status_id) REFERENCES order_statuses(id) ON DELETE RESTRICT;
`},
}

func runSteps(db *gorm.DB, log *zap.Logger, kind string, steps []step) error {
	log.Info("applying " + kind)
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("failed to apply "+kind, zap.String("name", s.name), zap.Error(err))
			return err
		}
	}
	log.Info(kind+" applied", zap.Int("count", len(steps)))
	return nil
}

func MigrateRetailDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting retail database migration")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("creating tables")
	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Category{},
		&models.Manufacturer{},
		&models.Supplier{},
		&models.Product{},
		&models.OrderStatus{},
		&models.Order{},
		&models.OrderLine{},
		&models.WebSession{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateChecks {
		if err := runSteps(db, log, "check constraints", checkSteps); err != nil {
			return err
		}
	}
	if opt.CreateIndexes {
		if err := runSteps(db, log, "indexes", indexSteps); err != nil {
			return err
		}
	}
	if opt.CreateFKsViaSQL {
		if err := runSteps(db, log, "foreign keys", fkSteps); err != nil {
			return err
		}
	}

	if opt.SeedReference {
		if err := seedReference(db, log); err != nil {
			return err
		}
	}

	log.Info("retail database migration finished")
	return nil
}

func seedReference(db *gorm.DB, log *zap.Logger) error {
	roles := []models.Role{{Name: RoleClient}, {Name: RoleManager}, {Name: RoleAdministrator}}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		log.Error("failed to seed roles", zap.Error(err))
		return err
	}

	status := models.OrderStatus{Name: StatusNew}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&status).Error; err != nil {
		log.Error("failed to seed order status", zap.Error(err))
		return err
	}
	log.Info("reference data seeded")
	return nil
}
