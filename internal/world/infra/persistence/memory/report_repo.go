package memory

import (
	"context"
	"sort"
	"sync"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

type ReportRepository struct {
	mu      sync.RWMutex
	reports map[entity.WorldID][]entity.BattleReport
	seen    map[string]struct{}
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		reports: make(map[entity.WorldID][]entity.BattleReport),
		seen:    make(map[string]struct{}),
	}
}

// SaveReports 按 id 去重，重放同一批不会产生重复战报。
func (r *ReportRepository) SaveReports(_ context.Context, reports []entity.BattleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range reports {
		if _, ok := r.seen[rep.ID]; ok {
			continue
		}
		r.seen[rep.ID] = struct{}{}
		r.reports[rep.WorldID] = append(r.reports[rep.WorldID], rep)
	}
	return nil
}

// ListReports 返回与 kingdom 相关（攻方或守方）的最近 limit 条，新的在前；kingdom 为空返回全部。
func (r *ReportRepository) ListReports(_ context.Context, worldID entity.WorldID, kingdom entity.KingdomID, limit int) ([]entity.BattleReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.BattleReport, 0)
	for _, rep := range r.reports[worldID] {
		if kingdom == "" || rep.Attacker == kingdom || rep.Defender == kingdom {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ port.ReportRepository = (*ReportRepository)(nil)
