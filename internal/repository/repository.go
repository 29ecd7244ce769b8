package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB         *gorm.DB
	Users      UserRepo
	Roles      RoleRepo
	Products   ProductRepo
	References ReferenceRepo
	Statuses   StatusRepo
	Orders     OrderRepo
	OrderLines OrderLineRepo
	Sessions   SessionRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Users:      NewUserRepo(db),
		Roles:      NewRoleRepo(db),
		Products:   NewProductRepo(db),
		References: NewReferenceRepo(db),
		Statuses:   NewStatusRepo(db),
		Orders:     NewOrderRepo(db),
		OrderLines: NewOrderLineRepo(db),
		Sessions:   NewSessionRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against a full repository set bound to one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
