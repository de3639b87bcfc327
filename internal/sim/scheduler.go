package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// Частота симуляции фиксирована и не настраивается во время работы
const (
	TicksPerSecond = 20
	TickInterval   = 1.0 / TicksPerSecond // секунды
)

var (
	// ErrReentrantTick возвращается при вызове Tick изнутри поведения блока
	ErrReentrantTick = errors.New("повторный вход в тик")
	// ErrInvalidDelta возвращается для отрицательного или нечислового шага времени
	ErrInvalidDelta = errors.New("некорректный шаг времени")
)

// Scheduler выполняет тики симуляции с фиксированным шагом.
//
// Позиции, запланированные во время тика, попадают в новую очередь и
// выполняются только в следующем тике. Scheduler не синхронизирован и
// должен использоваться из одной горутины (горутины цикла кадров).
type Scheduler struct {
	world    *world.World
	registry *block.Registry

	queue       []vec.Vec3 // FIFO позиций следующего тика
	accumulator float64    // Накопленное, но не отработанное время
	elapsed     uint64     // Выполнено тиков
	ticking     bool

	logger  *logging.Logger
	metrics *Metrics
}

// Option настраивает Scheduler
type Option func(*Scheduler)

// WithLogger задаёт логгер компонента
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// NewScheduler создаёт планировщик над миром и регистром блоков
func NewScheduler(w *world.World, r *block.Registry, opts ...Option) *Scheduler {
	s := &Scheduler{
		world:    w,
		registry: r,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule ставит позицию в очередь следующего тика
func (s *Scheduler) Schedule(pos vec.Vec3) {
	s.queue = append(s.queue, pos)
	s.metrics.setQueueLength(len(s.queue))
}

// Pending возвращает длину очереди
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// ElapsedTicks возвращает количество выполненных тиков
func (s *Scheduler) ElapsedTicks() uint64 {
	return s.elapsed
}

// Advance добавляет deltaTime секунд и выполняет все накопившиеся тики.
// Неполные тики не выполняются; возвращает число выполненных тиков.
// Ошибки отдельных тиков объединяются и не прерывают догоняющий цикл.
func (s *Scheduler) Advance(deltaTime float64) (int, error) {
	if deltaTime < 0 || math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDelta, deltaTime)
	}

	s.accumulator += deltaTime

	var errs []error
	ticks := 0
	for s.accumulator > TickInterval {
		if err := s.Tick(); err != nil {
			errs = append(errs, err)
		}
		s.accumulator -= TickInterval
		ticks++
	}

	return ticks, errors.Join(errs...)
}

// Tick выполняет один шаг симуляции.
//
// Текущая очередь заменяется пустой, затем для каждой позиции из старой
// очереди читается блок и вызывается поведение его типа. Пустые позиции
// пропускаются. Ошибки логируются и объединяются, тик при этом не прерывается.
func (s *Scheduler) Tick() error {
	if s.ticking {
		return ErrReentrantTick
	}
	s.ticking = true
	defer func() { s.ticking = false }()

	start := time.Now()
	current := s.queue
	s.queue = nil

	api := &tickAPI{scheduler: s}

	var errs []error
	for _, pos := range current {
		id, err := s.world.GetBlock(pos)
		if err != nil {
			errs = append(errs, s.tickError(pos, err))
			continue
		}
		if id.IsEmpty() {
			continue
		}

		s.metrics.incDispatches()
		if err := s.registry.Dispatch(api, pos, id); err != nil {
			errs = append(errs, s.tickError(pos, err))
		}
	}

	s.elapsed++
	s.metrics.observeTick(time.Since(start), len(s.queue))
	s.log().Trace("Тик %d: обработано %d позиций, запланировано %d", s.elapsed, len(current), len(s.queue))

	return errors.Join(errs...)
}

func (s *Scheduler) tickError(pos vec.Vec3, err error) error {
	s.metrics.incErrors()
	s.log().Error("Тик %d: ошибка блока в %s: %v", s.elapsed+1, pos, err)
	return fmt.Errorf("позиция %s: %w", pos, err)
}

// log возвращает логгер планировщика или глобальный
func (s *Scheduler) log() *logging.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.Default()
}
