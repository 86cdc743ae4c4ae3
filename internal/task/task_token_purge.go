package task

import (
	"context"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// TokenPurgeTask 清理已过期的令牌注销记录
type TokenPurgeTask struct {
	app *app.App
}

// Name 返回任务名称
func (t *TokenPurgeTask) Name() string {
	return "TokenPurge"
}

// LoopInterval 返回执行间隔
func (t *TokenPurgeTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun 是否立即执行一次
func (t *TokenPurgeTask) IsStartupRun() bool {
	return true
}

// Run 执行清理
func (t *TokenPurgeTask) Run(ctx context.Context) error {
	n, err := t.app.UserService.PurgeRevokedTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int64(logger.FieldCount, n))
	}
	return nil
}

// NewTokenPurgeTask 创建清理任务
func NewTokenPurgeTask(appContainer *app.App) (Task, error) {
	return &TokenPurgeTask{app: appContainer}, nil
}

func init() {
	RegisterWithApp(NewTokenPurgeTask)
}
