package repository

import (
	"context"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*model.User, error)
	List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND username = ? AND is_active = true", tenantID, username).
		First(&u).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.User, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var users []model.User
	err := q.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}
