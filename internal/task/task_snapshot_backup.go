package task

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser 标准 5 段 cron 表达式
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SnapshotBackupTask 按 cron 表达式导出已加载租户的快照
// 每分钟检查一次是否到达下次执行时间
type SnapshotBackupTask struct {
	app      *app.App
	schedule cron.Schedule
	now      func() time.Time

	mu   sync.Mutex
	next time.Time
}

// Name 返回任务名称
func (t *SnapshotBackupTask) Name() string {
	return "SnapshotBackup"
}

// LoopInterval 返回执行间隔
func (t *SnapshotBackupTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 是否立即执行一次
func (t *SnapshotBackupTask) IsStartupRun() bool {
	return false
}

// NextRunTime 下次执行时间
func (t *SnapshotBackupTask) NextRunTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// Run 到达执行时间时备份
func (t *SnapshotBackupTask) Run(ctx context.Context) error {
	now := t.now()

	t.mu.Lock()
	if now.Before(t.next) {
		t.mu.Unlock()
		return nil
	}
	t.next = t.schedule.Next(now)
	t.mu.Unlock()

	if t.app.IsShuttingDown() {
		return nil
	}
	done := t.app.TrackOperation()
	defer done()

	started := time.Now()
	n, err := t.app.BackupService.ExecuteBackups(ctx)
	if err != nil {
		return errors.Wrap(err, "snapshot backup")
	}
	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int(logger.FieldCount, n),
		zap.Duration(logger.FieldDuration, time.Since(started)),
		zap.Time("next", t.NextRunTime()))
	return nil
}

// NewSnapshotBackupTask 创建备份任务，backup.enabled 为 false 时不启用
func NewSnapshotBackupTask(appContainer *app.App) (Task, error) {
	if appContainer.BackupService == nil {
		return nil, nil
	}
	expr := appContainer.Config().Backup.Cron
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid backup cron %q", expr)
	}
	t := &SnapshotBackupTask{
		app:      appContainer,
		schedule: schedule,
		now:      time.Now,
	}
	t.next = schedule.Next(t.now())
	return t, nil
}

func init() {
	RegisterWithApp(NewSnapshotBackupTask)
}
