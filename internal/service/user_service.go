// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/dto"
	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"
	"github.com/haierkeys/memo-sync-service/pkg/convert"
	"github.com/haierkeys/memo-sync-service/pkg/logger"
	"github.com/haierkeys/memo-sync-service/pkg/util"

	"go.uber.org/zap"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserRegisterRequest, clientIP string) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// Logout 注销当前令牌
	Logout(ctx context.Context, claims *app.UserEntity) error

	// IsTokenRevoked 令牌是否已注销，供认证中间件使用
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeRevokedTokens 清理已过期的注销记录
	PurgeRevokedTokens(ctx context.Context) (int64, error)
}

// 没有过期时间的令牌，注销记录保留的时长
const revokedTokenRetention = 100 * 365 * 24 * time.Hour

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenRepo    domain.TokenRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenRepo domain.TokenRepository, tokenManager app.TokenManager, lg *zap.Logger, config *ServiceConfig) UserService {
	return &userService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		tokenManager: tokenManager,
		logger:       lg,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) (*dto.UserDTO, error) {
	out := &dto.UserDTO{}
	if err := convert.StructAssign(user, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *userService) withToken(user *domain.User, clientIP string) (*dto.UserDTO, error) {
	token, err := s.tokenManager.Generate(user.UID, user.Username, clientIP)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}
	out, err := s.domainToDTO(user)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out.Token = token
	return out, nil
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserRegisterRequest, clientIP string) (*dto.UserDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	// 检查用户名是否已存在
	existing, err := s.userRepo.GetByUsername(ctx, params.Username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, code.ErrorDBQuery
	}
	if existing != nil {
		return nil, code.ErrorUserAlreadyExists
	}

	// 生成密码哈希
	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorPasswordNotValid
	}

	user, err := s.userRepo.Create(ctx, &domain.User{Username: params.Username, Password: password})
	if err != nil {
		s.logger.Error("UserService.Register failed", zap.String("username", params.Username), zap.Error(err))
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("user registered", zap.Int64(logger.FieldUID, user.UID))
	return s.withToken(user, clientIP)
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// 不暴露用户是否存在，统一返回用户名或密码错误
			return nil, code.ErrorPasswordNotValid
		}
		return nil, code.ErrorDBQuery
	}

	// 验证密码
	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorPasswordNotValid
	}

	return s.withToken(user, clientIP)
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, code.ErrorUserNotFound
		}
		s.logger.Error("UserService.GetInfo failed",
			zap.Int64(logger.FieldUID, uid),
			zap.Error(err),
		)
		return nil, code.ErrorDBQuery
	}
	out, err := s.domainToDTO(user)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return out, nil
}

// Logout 注销当前令牌，之后该令牌无法再通过认证
func (s *userService) Logout(ctx context.Context, claims *app.UserEntity) error {
	if claims == nil || claims.ID == "" {
		return code.ErrorInvalidUserAuthToken
	}
	expiresAt := time.Now().Add(revokedTokenRetention)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.tokenRepo.Revoke(ctx, claims.ID, claims.UID, expiresAt); err != nil {
		s.logger.Error("UserService.Logout failed", zap.Int64(logger.FieldUID, claims.UID), zap.Error(err))
		return code.ErrorDBQuery
	}
	s.logger.Info("user logged out", zap.Int64(logger.FieldUID, claims.UID))
	return nil
}

// IsTokenRevoked 令牌是否已注销
func (s *userService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.tokenRepo.IsRevoked(ctx, jti)
}

// PurgeRevokedTokens 清理已过期的注销记录，过期令牌本身已无法通过签名校验
func (s *userService) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.PurgeExpired(ctx, time.Now())
}

// 确保 userService 实现了 UserService 接口
var _ UserService = (*userService)(nil)
