package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
)

// RoleAdmin 管理员角色
const RoleAdmin = "admin"

// TokenBlacklist Token 黑名单存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 管理员认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	// EnsureBootstrapAdmin 按配置创建初始管理员，已存在时跳过
	EnsureBootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例，blacklist 可为 nil（登出仅由客户端丢弃 Token）
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询管理员
	admin, err := s.repo.Admin.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询管理员失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(admin.AdminID, admin.Email, RoleAdmin)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Admin: dto.AdminResponse{
			ID:    admin.AdminID,
			Email: admin.Email,
		},
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("加入 Token 黑名单失败", zap.String("admin_id", claims.AdminID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── EnsureBootstrapAdmin ──────────────────────

func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	email := NormalizeEmail(s.cfg.Auth.BootstrapAdminEmail)
	if email == "" || s.cfg.Auth.BootstrapAdminPassword == "" {
		return nil
	}

	if _, err := s.repo.Admin.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.repo.Admin.Create(ctx, &model.Admin{Email: email, PasswordHash: string(hash)})
	if err != nil && !errors.Is(err, pkgerrors.ErrDuplicate) {
		return err
	}

	s.logger.Info("已创建初始管理员", zap.String("email", email))
	return nil
}
