package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/jwt"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/redis"
)

// ── 测试辅助 ──

func setupTestAuthService(blacklist TokenBlacklist) (AuthService, *mockUserRepo, *jwt.Manager) {
	cfg := testConfig()
	repo, users, _ := newTestRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, repo, jwtMgr, blacklist, zap.NewNop()), users, jwtMgr
}

func registerStudent(t *testing.T, svc AuthService) *dto.TokenResponse {
	t.Helper()
	sid := "S-1001"
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:      "Alice Chen",
		Email:     "Alice@Example.com",
		Password:  "secret123",
		StudentID: &sid,
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	return resp
}

// ── Register ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, jwtMgr := setupTestAuthService(nil)

	resp := registerStudent(t, svc)
	if resp.User.Email != "alice@example.com" {
		t.Errorf("邮箱应规范化为小写，实际=%s", resp.User.Email)
	}
	if resp.User.Role != model.RoleStudent {
		t.Errorf("注册用户应为 student，实际=%s", resp.User.Role)
	}
	if resp.ExpiresIn != int(time.Hour.Seconds()) {
		t.Errorf("ExpiresIn 不符: %d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("Token 应可解析: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != model.RoleStudent {
		t.Errorf("Token 声明不符: %+v", claims)
	}

	stored := users.users[resp.User.ID]
	if stored.PasswordHash == "secret123" {
		t.Fatal("密码不应明文存储")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")) != nil {
		t.Error("密码哈希校验失败")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	registerStudent(t, svc)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Another", Email: "alice@example.com", Password: "secret123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}

	sid := "S-1001"
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Another", Email: "other@example.com", Password: "secret123", StudentID: &sid,
	})
	if !errors.Is(err, ErrStudentIDExists) {
		t.Errorf("期望 ErrStudentIDExists，实际: %v", err)
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Error("重复注册应归类为 Conflict")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, users, _ := setupTestAuthService(nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "A", Email: "bad", Password: "123"})
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("期望 3 个字段错误，实际=%+v", verr.Fields)
	}
	if len(users.users) != 0 {
		t.Error("校验失败不应创建用户")
	}
}

// ── Login ──

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	registerStudent(t, svc)

	tests := []struct {
		name    string
		req     *dto.LoginRequest
		wantErr error
	}{
		{"正确凭据", &dto.LoginRequest{Email: "ALICE@example.com", Password: "secret123"}, nil},
		{"指定学生角色", &dto.LoginRequest{Email: "alice@example.com", Password: "secret123", Role: model.RoleStudent}, nil},
		{"角色不符", &dto.LoginRequest{Email: "alice@example.com", Password: "secret123", Role: model.RoleAdmin}, ErrInvalidCredentials},
		{"密码错误", &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"}, ErrInvalidCredentials},
		{"用户不存在", &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login 应成功: %v", err)
			}
			if resp.Token == "" {
				t.Error("应返回 Token")
			}
		})
	}
}

// ── Logout ──

func TestAuthService_Logout_Blacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("连接 miniredis 失败: %v", err)
	}
	defer rdb.Close()

	svc, _, jwtMgr := setupTestAuthService(rdb)
	resp := registerStudent(t, svc)
	claims, _ := jwtMgr.ParseToken(resp.Token)

	if err := svc.Logout(context.Background(), claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}

	revoked, err := rdb.IsBlacklisted(context.Background(), claims.ID)
	if err != nil || !revoked {
		t.Errorf("Token 应加入黑名单，revoked=%v err=%v", revoked, err)
	}

	mr.FastForward(2 * time.Hour)
	revoked, _ = rdb.IsBlacklisted(context.Background(), claims.ID)
	if revoked {
		t.Error("黑名单条目应在 Token 过期后失效")
	}
}

func TestAuthService_Logout_WithoutRedis(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	if err := svc.Logout(context.Background(), "jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("未启用 Redis 时登出应直接成功: %v", err)
	}
}

// ── Profile ──

func TestAuthService_Profile(t *testing.T) {
	svc, users, _ := setupTestAuthService(nil)
	resp := registerStudent(t, svc)
	users.add(otherID, "Bob", model.RoleStudent)

	profile, err := svc.GetProfile(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("GetProfile 应成功: %v", err)
	}
	if profile.StudentID == nil || *profile.StudentID != "S-1001" {
		t.Errorf("学号不符: %v", profile.StudentID)
	}

	name := "  Alice C.  "
	updated, err := svc.UpdateProfile(context.Background(), resp.User.ID, &dto.UpdateProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功: %v", err)
	}
	if updated.Name != "Alice C." {
		t.Errorf("姓名应去除首尾空白，实际=%q", updated.Name)
	}

	taken := "bob@test.local"
	if _, err := svc.UpdateProfile(context.Background(), resp.User.ID, &dto.UpdateProfileRequest{Email: &taken}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}

	same := "ALICE@example.com"
	if _, err := svc.UpdateProfile(context.Background(), resp.User.ID, &dto.UpdateProfileRequest{Email: &same}); err != nil {
		t.Errorf("保持原邮箱应成功: %v", err)
	}

	if _, err := svc.GetProfile(context.Background(), missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── ChangePassword ──

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	resp := registerStudent(t, svc)

	err := svc.ChangePassword(context.Background(), resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong-pass", NewPassword: "newsecret",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("期望 ErrWrongPassword，实际: %v", err)
	}

	err = svc.ChangePassword(context.Background(), resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("旧密码应失效")
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "newsecret"}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := hashPassword("secret123", 99, zap.NewNop())
	if err != nil {
		t.Fatalf("hashPassword 应成功: %v", err)
	}
	cost, _ := bcrypt.Cost([]byte(hash))
	if cost != bcrypt.DefaultCost {
		t.Errorf("非法 cost 应回退为默认值，实际=%d", cost)
	}
}
