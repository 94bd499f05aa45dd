package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

func setupTestUserService() (UserService, *mockUserRepo, *config.Config) {
	cfg := testConfig()
	repo, users, _ := newTestRepository()
	users.add(ownerID, "Alice", model.RoleStudent)
	users.add(otherID, "Bob", model.RoleStudent)
	users.add(adminID, "Admin", model.RoleAdmin)
	return NewUserService(cfg, repo, DefaultPolicy(), zap.NewNop()), users, cfg
}

func TestUserService_AdminOnly(t *testing.T) {
	svc, _, _ := setupTestUserService()

	if _, _, err := svc.List(context.Background(), ownerCaller, &dto.UserListQuery{}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("学生不能查看用户列表，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), ownerCaller, otherID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("学生不能删除用户，实际: %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	svc, _, _ := setupTestUserService()

	all, total, err := svc.List(context.Background(), adminCaller, &dto.UserListQuery{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("期望 3 个用户，实际 total=%d len=%d", total, len(all))
	}

	students, total, err := svc.List(context.Background(), adminCaller, &dto.UserListQuery{
		PaginationQuery: dto.PaginationQuery{Page: 1, Limit: 1},
		Role:            model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(students) != 1 {
		t.Errorf("按角色过滤并分页不符: total=%d len=%d", total, len(students))
	}

	if _, _, err := svc.List(context.Background(), adminCaller, &dto.UserListQuery{Role: "guest"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("非法角色期望校验错误，实际: %v", err)
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc, _, _ := setupTestUserService()

	u, err := svc.GetByID(context.Background(), adminCaller, ownerID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("期望 Alice，实际=%s", u.Name)
	}

	for _, id := range []string{missing, "abc"} {
		if _, err := svc.GetByID(context.Background(), adminCaller, id); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("id=%s 期望 ErrUserNotFound，实际: %v", id, err)
		}
	}
}

func TestUserService_Update(t *testing.T) {
	svc, users, _ := setupTestUserService()

	role := model.RoleAdmin
	sid := " S-42 "
	u, err := svc.Update(context.Background(), adminCaller, ownerID, &dto.UpdateUserRequest{Role: &role, StudentID: &sid})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if u.Role != model.RoleAdmin || u.StudentID == nil || *u.StudentID != "S-42" {
		t.Errorf("更新结果不符: %+v", u)
	}
	if users.users[ownerID].Role != model.RoleAdmin {
		t.Error("更新应写入存储")
	}

	taken := "bob@test.local"
	if _, err := svc.Update(context.Background(), adminCaller, ownerID, &dto.UpdateUserRequest{Email: &taken}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}

	if _, err := svc.Update(context.Background(), adminCaller, otherID, &dto.UpdateUserRequest{StudentID: &sid}); !errors.Is(err, ErrStudentIDExists) {
		t.Errorf("期望 ErrStudentIDExists，实际: %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, users, _ := setupTestUserService()

	if err := svc.Delete(context.Background(), adminCaller, adminID); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}

	if err := svc.Delete(context.Background(), adminCaller, ownerID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := users.users[ownerID]; ok {
		t.Error("用户应被删除")
	}

	if err := svc.Delete(context.Background(), adminCaller, ownerID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("重复删除期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestUserService_Stats(t *testing.T) {
	svc, _, _ := setupTestUserService()

	stats, err := svc.Stats(context.Background(), adminCaller)
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.Total != 3 || stats.Students != 2 || stats.Admins != 1 {
		t.Errorf("用户统计不符: %+v", stats)
	}
}

func TestUserService_CreateAdmin(t *testing.T) {
	svc, _, _ := setupTestUserService()

	u, err := svc.CreateAdmin(context.Background(), adminCaller, &dto.CreateAdminRequest{
		Name: "Second Admin", Email: "Admin2@Example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateAdmin 应成功: %v", err)
	}
	if u.Role != model.RoleAdmin || u.Email != "admin2@example.com" {
		t.Errorf("创建结果不符: %+v", u)
	}

	_, err = svc.CreateAdmin(context.Background(), adminCaller, &dto.CreateAdminRequest{
		Name: "Dup", Email: "admin2@example.com", Password: "secret123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestUserService_EnsureDefaultAdmin(t *testing.T) {
	svc, users, cfg := setupTestUserService()

	// 未配置时跳过
	if err := svc.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("未配置 seed 时应直接返回: %v", err)
	}
	if len(users.users) != 3 {
		t.Fatal("未配置 seed 时不应创建用户")
	}

	cfg.Seed = config.SeedConfig{AdminEmail: "root@example.com", AdminPassword: "rootpass"}
	if err := svc.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultAdmin 应成功: %v", err)
	}
	if err := svc.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("重复调用应幂等: %v", err)
	}

	var seeded *model.User
	count := 0
	for _, u := range users.users {
		if u.Email == "root@example.com" {
			seeded = u
			count++
		}
	}
	if count != 1 {
		t.Fatalf("期望仅创建 1 个默认管理员，实际=%d", count)
	}
	if seeded.Name != "System Administrator" || seeded.Role != model.RoleAdmin {
		t.Errorf("默认管理员信息不符: %+v", seeded)
	}
}
