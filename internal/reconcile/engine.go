// Package reconcile decides, per memo, which side of a sync wins by comparing history chains.
// reconcile 通过比较历史链决定同步中每条备忘录由哪一方胜出
package reconcile

import (
	"errors"
	"fmt"

	"github.com/haierkeys/memo-sync-service/internal/domain"
)

// ErrEmptyHistory means a memo reached the engine without being normalized.
// ErrEmptyHistory 表示备忘录未经规范化就进入了引擎
var ErrEmptyHistory = errors.New("reconcile: memo has an empty history")

// Decision is the outcome for one client memo.
// Replace reports whether the stored memo must become the client's memo.
// Decision 单条备忘录的裁决，Replace 表示是否需要用客户端版本替换存储版本
type Decision struct {
	Status    domain.Status
	Replace   bool
	Memo      *domain.Memo
	Tombstone *domain.Tombstone
}

// Reconcile compares a client memo with the stored state for the same id.
// stored and tombstone are nil when absent. It never mutates its arguments.
// Reconcile 比较客户端备忘录与同 ID 的存储状态，不修改入参
func Reconcile(client domain.Memo, stored *domain.Memo, tombstone *domain.Tombstone) (Decision, error) {
	if tombstone != nil {
		t := *tombstone
		return Decision{Status: domain.StatusDeleted, Tombstone: &t}, nil
	}

	if len(client.History) == 0 {
		return Decision{}, fmt.Errorf("%w: client memo %q", ErrEmptyHistory, client.ID)
	}

	if stored == nil {
		m := client.Clone()
		return Decision{Status: domain.StatusAccepted, Replace: true, Memo: &m}, nil
	}

	if len(stored.History) == 0 {
		return Decision{}, fmt.Errorf("%w: stored memo %q", ErrEmptyHistory, stored.ID)
	}

	clientChain := client.HistoryIDs()
	storedChain := stored.HistoryIDs()

	switch {
	case SameChain(clientChain, storedChain):
		m := stored.Clone()
		return Decision{Status: domain.StatusAccepted, Memo: &m}, nil
	case IsStrictPrefix(storedChain, clientChain):
		m := client.Clone()
		return Decision{Status: domain.StatusAccepted, Replace: true, Memo: &m}, nil
	case IsStrictPrefix(clientChain, storedChain):
		m := stored.Clone()
		return Decision{Status: domain.StatusUpdate, Memo: &m}, nil
	default:
		m := stored.Clone()
		return Decision{Status: domain.StatusConflict, Memo: &m}, nil
	}
}

// IsPrefix reports whether a equals the leading len(a) elements of b.
// IsPrefix 判断 a 是否为 b 的前缀
func IsPrefix(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsStrictPrefix reports whether a is a prefix of b and shorter than b.
func IsStrictPrefix(a, b []string) bool {
	return len(a) < len(b) && IsPrefix(a, b)
}

// SameChain reports whether both chains have the same ids in the same order.
func SameChain(a, b []string) bool {
	return len(a) == len(b) && IsPrefix(a, b)
}
