package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error)
	CountByRole(ctx context.Context) (*model.RoleCounts, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete 删除用户，其投诉由外键 ON DELETE CASCADE 一并删除
func (r *userRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 分页查询用户，role 为空表示全部
func (r *userRepo) List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		db = db.Where("role = ?", role)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (*model.RoleCounts, error) {
	var counts model.RoleCounts
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN role = ? THEN 1 END) AS students,
			COUNT(CASE WHEN role = ? THEN 1 END) AS admins`, model.RoleStudent, model.RoleAdmin).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
