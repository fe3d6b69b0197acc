package service

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Dominion/internal/shared/gameconfig/balance"
	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/internal/worldgen"
	"Dominion/modules/kit/errx"
	"Dominion/modules/kit/logx"
)

// ReportJournal 接收成功占领产生的战报，异步归档。
type ReportJournal interface {
	Append(r entity.BattleReport)
}

type Options struct {
	MaxKingdoms  int
	SpawnSpacing int
	SpawnTries   int
	TickInterval time.Duration
	DayLength    time.Duration
	SeasonLength time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxKingdoms <= 0 {
		o.MaxKingdoms = 100
	}
	if o.SpawnSpacing <= 0 {
		o.SpawnSpacing = 12
	}
	if o.SpawnTries <= 0 {
		o.SpawnTries = 200
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.DayLength <= 0 {
		o.DayLength = 24 * time.Hour
	}
	if o.SeasonLength <= 0 {
		o.SeasonLength = 30 * 24 * time.Hour
	}
	return o
}

type Deps struct {
	Store     port.WorldStore
	Publisher port.EventPublisher
	Journal   ReportJournal
	Reports   port.ReportRepository
	Balance   balance.Balance
	Options   Options
	Logger    logx.Logger
	// Now 为空时用 time.Now。
	Now func() time.Time
}

// WorldService 是征服玩法的入口：世界创建、加入、占领、造兵、解锁与产出。
// 它本身无状态，世界的可变状态全部在 WorldStore 里，进程内按世界串行由 actor 保证。
type WorldService struct {
	store   port.WorldStore
	events  port.EventPublisher
	journal ReportJournal
	reports port.ReportRepository
	bal     balance.Balance
	opts    Options
	log     logx.Logger
	now     func() time.Time
}

func NewWorldService(d Deps) *WorldService {
	s := &WorldService{
		store:   d.Store,
		events:  d.Publisher,
		journal: d.Journal,
		reports: d.Reports,
		bal:     d.Balance,
		opts:    d.Options.withDefaults(),
		log:     d.Logger,
		now:     d.Now,
	}
	if s.events == nil {
		s.events = port.NoopPublisher{}
	}
	if s.log == nil {
		s.log = logx.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.bal.MaxConflictRetries <= 0 {
		s.bal.MaxConflictRetries = balance.Default().MaxConflictRetries
	}
	return s
}

func (s *WorldService) Balance() balance.Balance {
	return s.bal
}

func (s *WorldService) Options() Options {
	return s.opts
}

func (s *WorldService) Now() time.Time {
	return s.now()
}

// GenerateWorld 只生成不落库。
func (s *WorldService) GenerateWorld(size int, seed int64) (*worldgen.Result, error) {
	cfg := worldgen.Config{
		Size:       size,
		Seed:       seed,
		UnlockDays: s.bal.Unlock.Days(),
		Logger:     s.log,
	}
	res, err := worldgen.Generate(cfg)
	if err != nil {
		if errors.Is(err, worldgen.ErrInvalidSize) {
			return nil, ErrInvalidParam.WithData("size", size).WithCause(err)
		}
		return nil, errx.ErrInternal.WithCause(err)
	}
	return res, nil
}

type CreateWorldRequest struct {
	ID   entity.WorldID
	Size int
	Seed int64
}

// CreateWorld 生成并持久化一个新世界，ID 为空时分配 uuid。
func (s *WorldService) CreateWorld(ctx context.Context, req CreateWorldRequest) (*entity.World, error) {
	if req.ID == "" {
		req.ID = entity.WorldID(uuid.NewString())
	}
	if !validID(string(req.ID)) {
		return nil, ErrInvalidParam.WithData("world_id", req.ID)
	}
	res, err := s.GenerateWorld(req.Size, req.Seed)
	if err != nil {
		return nil, err
	}
	now := s.now()
	w := &entity.World{
		ID:          req.ID,
		Size:        res.Size,
		Seed:        res.Seed,
		Tiles:       res.Tiles,
		Provinces:   res.Provinces,
		Ownership:   make(map[entity.Point]entity.KingdomID),
		Kingdoms:    make(map[entity.KingdomID]*entity.Kingdom),
		ProvinceSet: res.ProvinceMap(),
		CreatedAt:   now,
		SeasonEndAt: now.Add(s.opts.SeasonLength),
	}
	if err := s.store.CreateWorld(ctx, w); err != nil {
		if errors.Is(err, port.ErrAlreadyExists) {
			return nil, ErrWorldExists.WithData("world_id", req.ID)
		}
		return nil, storeErr(err, req.ID)
	}
	s.log.WithContext(ctx).Info("world created",
		zap.String("world_id", string(w.ID)),
		zap.Int("size", w.Size),
		zap.Int64("seed", w.Seed),
		zap.Int("provinces", len(w.ProvinceSet)),
		zap.Int("skipped_structures", res.Skipped),
	)
	return w, nil
}

// FlushReports 唤醒战报归档，journal 不支持 Flush 时什么都不做。
func (s *WorldService) FlushReports(ctx context.Context) error {
	f, ok := s.journal.(interface{ Flush(context.Context) error })
	if !ok {
		return nil
	}
	return f.Flush(ctx)
}

// ListReports 读取归档的战报，kingdom 为空时返回整个世界的。
func (s *WorldService) ListReports(ctx context.Context, id entity.WorldID, kingdom entity.KingdomID, limit int) ([]entity.BattleReport, error) {
	if s.reports == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out, err := s.reports.ListReports(ctx, id, kingdom, limit)
	if err != nil {
		return nil, storeErr(err, id)
	}
	return out, nil
}

// retry 执行“读取-校验-条件写入”，遇到 port.ErrConflict 重新来过，超过上限抛 ErrConflict。
func (s *WorldService) retry(ctx context.Context, op string, id entity.WorldID, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if !errors.Is(err, port.ErrConflict) {
			return err
		}
		if attempt >= s.bal.MaxConflictRetries {
			s.log.WithContext(ctx).Warn("conflict retries exhausted",
				zap.String("op", op),
				zap.String("world_id", string(id)),
				zap.Int("attempts", attempt+1),
			)
			return ErrConflict.WithData("op", op).WithData("world_id", id)
		}
		if ctx.Err() != nil {
			return errx.ErrTimeout.WithCause(ctx.Err())
		}
		s.log.WithContext(ctx).Debug("conditional update lost, retrying",
			zap.String("op", op), zap.Int("attempt", attempt+1))
	}
}

// storeErr 把存储层错误翻译成对外错误；冲突原样返回交给 retry 处理。
func storeErr(err error, id entity.WorldID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, port.ErrConflict):
		return err
	case errors.Is(err, port.ErrNotFound):
		return ErrWorldNotFound.WithData("world_id", id)
	}
	var e *errx.Error
	if errors.As(err, &e) {
		return err
	}
	return errx.ErrUnavailable.WithData("world_id", id).WithCause(err)
}

func (s *WorldService) publish(ctx context.Context, id entity.WorldID, at time.Time, items ...eventItem) {
	if len(items) == 0 {
		return
	}
	events := make([]port.Event, len(items))
	for i, it := range items {
		events[i] = port.Event{ID: uuid.NewString(), WorldID: id, Type: it.typ, At: at, Data: it.data}
	}
	s.events.Publish(ctx, events...)
}

type eventItem struct {
	typ  port.EventType
	data any
}

func kingdomChanged(k *entity.Kingdom) eventItem {
	return eventItem{typ: port.EventKingdomStateChanged, data: port.KingdomStateChanged{
		KingdomID: k.ID, Power: k.Power, Resources: k.Resources, Troops: k.Troops,
	}}
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// validID 限制 id 字符集，id 会作为文档字段名的一部分。
func validID(id string) bool {
	return idPattern.MatchString(id)
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= 32
}

