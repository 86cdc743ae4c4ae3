package task

import (
	"context"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// StoreEvictTask 回收空闲的租户内存镜像
type StoreEvictTask struct {
	app *app.App
}

// Name 返回任务名称
func (t *StoreEvictTask) Name() string {
	return "StoreEvict"
}

// LoopInterval 返回执行间隔，为空闲时间的一半，最短 10 秒，最长 5 分钟
func (t *StoreEvictTask) LoopInterval() time.Duration {
	interval := t.app.Config().GetStoreIdleTime() / 2
	if interval < 10*time.Second {
		return 10 * time.Second
	}
	if interval > 5*time.Minute {
		return 5 * time.Minute
	}
	return interval
}

// IsStartupRun 是否立即执行一次
func (t *StoreEvictTask) IsStartupRun() bool {
	return false
}

// Run 执行回收
func (t *StoreEvictTask) Run(_ context.Context) error {
	evicted := t.app.EvictIdleStores()
	if len(evicted) > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int(logger.FieldCount, len(evicted)),
			zap.Int64s("uids", evicted))
	}
	return nil
}

// NewStoreEvictTask 创建回收任务
func NewStoreEvictTask(appContainer *app.App) (Task, error) {
	return &StoreEvictTask{app: appContainer}, nil
}

func init() {
	RegisterWithApp(NewStoreEvictTask)
}
