package dc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/modules/kit/logx"
)

const (
	defaultFlushEvery = 2 * time.Second
	maxBatch          = 500
	// defaultMaxPending 是数据库长时间不可用时内存里最多积压的战报数，超出后丢最旧的。
	defaultMaxPending = 50_000
	retryBackoff      = 200 * time.Millisecond
)

// ReportDC 是战报的写后缓冲：Append 只入内存，Flush/定时唤醒由后台协程批量写库。
// 写库失败的批次重新排到队首，下次唤醒再试。积压超过上限时丢最旧的战报并计数告警。
type ReportDC struct {
	repo       port.ReportRepository
	flushEvery time.Duration
	log        logx.Logger
	maxPending int

	mu      sync.Mutex
	pending []entity.BattleReport
	dropped int
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewReportDC(repo port.ReportRepository, flushEvery time.Duration, log logx.Logger) *ReportDC {
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	if log == nil {
		log = logx.Nop()
	}
	d := &ReportDC{
		repo:       repo,
		flushEvery: flushEvery,
		log:        log,
		maxPending: defaultMaxPending,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

func (d *ReportDC) Append(r entity.BattleReport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = append(d.pending, r)
	d.trimLocked()
}

// trimLocked 丢掉超出上限的最旧战报。
func (d *ReportDC) trimLocked() {
	if over := len(d.pending) - d.maxPending; over > 0 {
		d.pending = append(d.pending[:0:0], d.pending[over:]...)
		d.dropped += over
	}
}

// Dropped 返回因积压超限累计丢弃的战报数。
func (d *ReportDC) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Flush 唤醒写协程，不等待写库完成。
func (d *ReportDC) Flush(_ context.Context) error {
	if !d.IsDirty() {
		return nil
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

func (d *ReportDC) IsDirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) > 0
}

func (d *ReportDC) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *ReportDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Close 停止接收并尽力写完剩余战报，ctx 到期即返回。
func (d *ReportDC) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ReportDC) popBatch() []entity.BattleReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := min(len(d.pending), maxBatch)
	if n == 0 {
		return nil
	}
	batch := append([]entity.BattleReport(nil), d.pending[:n]...)
	d.pending = d.pending[n:]
	return batch
}

func (d *ReportDC) requeueOnError(batch []entity.BattleReport) {
	d.mu.Lock()
	d.pending = append(batch, d.pending...)
	d.trimLocked()
	d.mu.Unlock()
}

// reportDrops 把上次汇报后新增的丢弃数打到日志里。
func (d *ReportDC) reportDrops(logged *int) {
	d.mu.Lock()
	dropped, pending, limit := d.dropped, len(d.pending), d.maxPending
	d.mu.Unlock()
	if dropped == *logged {
		return
	}
	d.log.Warn("battle report backlog full, oldest reports dropped",
		zap.Int("dropped", dropped-*logged),
		zap.Int("dropped_total", dropped),
		zap.Int("pending", pending),
		zap.Int("max_pending", limit),
	)
	*logged = dropped
}

func (d *ReportDC) writerLoop() {
	defer close(d.done)

	ticker := time.NewTicker(d.flushEvery)
	defer ticker.Stop()
	logged := 0
	for {
		select {
		case <-d.wake:
			d.consumePending(false)
		case <-ticker.C:
			d.consumePending(false)
		case <-d.stop:
			d.consumePending(true)
			d.reportDrops(&logged)
			return
		}
		d.reportDrops(&logged)
	}
}

// consumePending 把缓冲写空；final 为 true 时（关闭阶段）失败只重试有限次。
func (d *ReportDC) consumePending(final bool) {
	failures := 0
	for {
		batch := d.popBatch()
		if batch == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.repo.SaveReports(ctx, batch)
		cancel()
		if err == nil {
			failures = 0
			continue
		}
		// 写库失败时重排当前批次，保持顺序
		d.requeueOnError(batch)
		failures++
		d.log.Error("battle report flush failed",
			zap.Int("batch", len(batch)),
			zap.Int("failures", failures),
			zap.Error(err),
		)
		if final && failures >= 3 {
			d.log.Warn("dropping unsaved battle reports on close", zap.Int("count", d.Pending()))
			return
		}
		if !final {
			return
		}
		time.Sleep(retryBackoff)
	}
}
