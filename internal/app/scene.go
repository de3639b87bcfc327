package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-sim/internal/camera"
	"github.com/annel0/voxel-sim/internal/config"
	"github.com/annel0/voxel-sim/internal/eventbus"
	"github.com/annel0/voxel-sim/internal/input"
	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/observability"
	"github.com/annel0/voxel-sim/internal/sim"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
	"github.com/annel0/voxel-sim/internal/world/block"
	"github.com/annel0/voxel-sim/internal/world/block/implementations"
)

// Позиции начального содержимого сцены без рельефа.
// С рельефом они поднимаются над поверхностью, см. Scene.SeedPositions.
var (
	SeedGrassPosition       = vec.Vec3{X: 0, Y: 0, Z: 0}
	SeedMovingGrassPosition = vec.Vec3{X: 1, Y: 1, Z: 1}
)

// Options содержит параметры сборки сцены
type Options struct {
	Catalog       string // Путь к YAML-каталогу блоков; пустой путь означает встроенный
	Window        vec.Size
	View          camera.ViewParams
	Ortho         camera.OrthographicParams
	Seed          int64
	Terrain       bool
	TerrainRadius int
	TerrainBlock  string

	Bus      *eventbus.Bus   // nil: новая шина
	Renderer RenderRebuilder // nil: пересборка не выполняется
	Metrics  *sim.Metrics
	Logger   *logging.Logger
	// Логгер камеры и выбора блоков; по умолчанию Logger
	PickingLogger *logging.Logger
}

// OptionsFromConfig переносит конфигурацию в параметры сцены
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Catalog: cfg.Blocks.Catalog,
		Window:  vec.Size{Width: cfg.Window.Width, Height: cfg.Window.Height},
		View: camera.ViewParams{
			LookFrom: mgl32.Vec3(cfg.Camera.LookFrom),
			LookAt:   mgl32.Vec3(cfg.Camera.LookAt),
			Up:       mgl32.Vec3(cfg.Camera.Up),
		},
		Ortho: camera.OrthographicParams{
			Width: cfg.Camera.OrthoWidth,
			Near:  cfg.Camera.Near,
			Far:   cfg.Camera.Far,
		},
		Seed:          cfg.World.Seed,
		Terrain:       cfg.World.Terrain,
		TerrainRadius: cfg.World.TerrainRadius,
		TerrainBlock:  cfg.World.TerrainBlock,
	}
}

// Stats содержит снимок состояния сцены для инспекции
type Stats struct {
	ElapsedTicks uint64         `json:"elapsed_ticks"`
	Pending      int            `json:"pending"`
	Frames       uint64         `json:"frames"`
	Chunks       int            `json:"chunks"`
	BlockTypes   int            `json:"block_types"`
	BoundsMin    *vec.Vec3      `json:"bounds_min,omitempty"`
	BoundsMax    *vec.Vec3      `json:"bounds_max,omitempty"`
	Bus          eventbus.Stats `json:"bus"`
}

// Scene объединяет регистр блоков, мир, планировщик тиков, состояния ввода и камеру.
// Все методы, кроме Stats, вызываются из горутины цикла кадров.
type Scene struct {
	Registry  *block.Registry
	World     *world.World
	Scheduler *sim.Scheduler
	Bus       *eventbus.Bus
	Window    *input.WindowState
	Input     *input.InputState
	Picking   *input.PickingState
	Camera    *camera.Camera

	renderer   RenderRebuilder
	terrain    *world.Generator // nil, если рельеф не генерировался
	pickToken  eventbus.Token
	logger     *logging.Logger
	pickLogger *logging.Logger
	tracer     trace.Tracer
	frames     uint64
}

// NewScene собирает сцену: регистрирует блоки, создаёт мир с чанком в начале
// координат (и рельеф, если включён), состояния ввода и камеру, подписывает
// выбор блока на лучи кликов.
func NewScene(opts Options) (*Scene, error) {
	registry := block.NewRegistry()
	if err := registerBlocks(registry, opts.Catalog); err != nil {
		return nil, err
	}

	w := world.NewWorld()
	if err := w.AddChunk(vec.Vec3{}, world.NewChunk()); err != nil {
		return nil, err
	}

	var terrain *world.Generator
	if opts.Terrain {
		id, err := registry.LookupID(opts.TerrainBlock)
		if err != nil {
			return nil, fmt.Errorf("блок рельефа: %w", err)
		}
		terrain = world.NewGenerator(opts.Seed)
		if err := terrain.Populate(w, opts.TerrainRadius, id); err != nil {
			return nil, err
		}
	}

	bus := opts.Bus
	if bus == nil {
		bus = eventbus.NewBus()
	}
	pickLogger := opts.PickingLogger
	if pickLogger == nil {
		pickLogger = opts.Logger
	}

	s := &Scene{
		Registry:   registry,
		World:      w,
		Scheduler:  sim.NewScheduler(w, registry, sim.WithLogger(opts.Logger), sim.WithMetrics(opts.Metrics)),
		Bus:        bus,
		Window:     input.NewWindowState(bus, opts.Window),
		Input:      input.NewInputState(bus),
		Picking:    input.NewPickingState(bus),
		renderer:   opts.Renderer,
		terrain:    terrain,
		logger:     opts.Logger,
		pickLogger: pickLogger,
		tracer:     observability.Tracer(),
	}

	cam, err := camera.New(opts.View, opts.Ortho, s.Window, s.Input, s.Picking, pickLogger)
	if err != nil {
		return nil, err
	}
	s.Camera = cam

	s.pickToken = s.Picking.ClickRay.Subscribe(func(ray world.Ray) {
		s.Pick(context.Background(), ray)
	})

	s.logger.Info("Сцена создана: %d типов блоков, %d чанков", registry.Len(), w.ChunkCount())
	return s, nil
}

func registerBlocks(r *block.Registry, catalogPath string) error {
	if catalogPath == "" {
		return implementations.RegisterDefaults(r)
	}
	catalog, err := block.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	return implementations.RegisterCatalog(r, catalog)
}

// SeedPositions возвращает позиции травы и движущейся травы для Seed.
// С рельефом обе позиции поднимаются над поверхностью столбцов (0,0) и (1,1),
// чтобы движущаяся трава не стирала блоки рельефа.
func (s *Scene) SeedPositions() (grass, moving vec.Vec3) {
	grass, moving = SeedGrassPosition, SeedMovingGrassPosition
	if s.terrain == nil {
		return grass, moving
	}

	lift := max(s.terrain.Height(grass.X, grass.Z), s.terrain.Height(moving.X, moving.Z)) + 1
	grass.Y += lift
	moving.Y += lift
	return grass, moving
}

// Seed размещает начальное содержимое: траву и движущуюся траву, которая
// сразу планируется на тик.
func (s *Scene) Seed() error {
	grass, err := s.Registry.LookupID(implementations.GrassName)
	if err != nil {
		return err
	}
	moving, err := s.Registry.LookupID(implementations.MovingGrassName)
	if err != nil {
		return err
	}

	grassPos, movingPos := s.SeedPositions()
	if err := s.World.AddBlock(grassPos, grass); err != nil {
		return err
	}
	if err := s.World.AddBlock(movingPos, moving); err != nil {
		return err
	}
	s.Scheduler.Schedule(movingPos)
	return nil
}

// SetRenderer задаёт пересборщик буферов (nil отключает пересборку)
func (s *Scene) SetRenderer(r RenderRebuilder) {
	s.renderer = r
}

// Frame продвигает симуляцию на dt секунд и, если мир изменился,
// пересобирает буферы отрисовки.
func (s *Scene) Frame(ctx context.Context, dt float64) error {
	ctx, span := s.tracer.Start(ctx, "scene.frame")
	defer span.End()

	s.frames++
	ticks, tickErr := s.Scheduler.Advance(dt)
	span.SetAttributes(
		attribute.Int("sim.ticks", ticks),
		attribute.Int("sim.pending", s.Scheduler.Pending()),
	)

	var rebuildErr error
	if s.World.TakeModified() && s.renderer != nil {
		_, rebuildSpan := s.tracer.Start(ctx, "scene.rebuild")
		rebuildErr = s.renderer.Rebuild(s.World)
		rebuildSpan.End()
	}

	err := errors.Join(tickErr, rebuildErr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "frame failed")
	}
	return err
}

// Pick пересекает луч с миром, логирует и публикует результат в Picking.Picked
func (s *Scene) Pick(ctx context.Context, ray world.Ray) input.Pick {
	_, span := s.tracer.Start(ctx, "scene.pick")
	defer span.End()

	pos, hit := s.World.Intersect(ray)
	result := input.Pick{Ray: ray, Position: pos, Hit: hit}

	span.SetAttributes(attribute.Bool("pick.hit", hit))
	if hit {
		span.SetAttributes(attribute.String("pick.position", pos.String()))
		s.pickLogger.Info("Результат пересечения с миром: %s (%s)", pos, ray)
	} else {
		s.pickLogger.Info("Результат пересечения с миром: нет (%s)", ray)
	}

	s.Picking.Picked.Set(result)
	return result
}

// Click имитирует клик левой кнопкой в точке окна и возвращает результат выбора
func (s *Scene) Click(point mgl32.Vec2) (input.Pick, error) {
	// Камера молча пропускает клики, которые не может превратить в луч
	if _, err := s.Camera.Unproject(point); err != nil {
		return input.Pick{}, err
	}
	s.Input.LeftClick.Set(point)
	return s.Picking.Picked.Get(), nil
}

// Resize сообщает новый размер окна
func (s *Scene) Resize(size vec.Size) {
	s.Window.WindowSize.Set(size)
	s.Window.FramebufferSize.Set(size)
}

// Frames возвращает количество выполненных кадров
func (s *Scene) Frames() uint64 {
	return s.frames
}

// Stats возвращает снимок состояния. Счётчики планировщика читаются без
// синхронизации, поэтому из других горутин Stats вызывается через Loop.Do.
func (s *Scene) Stats() Stats {
	stats := Stats{
		ElapsedTicks: s.Scheduler.ElapsedTicks(),
		Pending:      s.Scheduler.Pending(),
		Frames:       s.frames,
		Chunks:       s.World.ChunkCount(),
		BlockTypes:   s.Registry.Len(),
		Bus:          s.Bus.Stats(),
	}
	if b, ok := s.World.Bounds(); ok {
		stats.BoundsMin = &b.Min
		stats.BoundsMax = &b.Max
	}
	return stats
}

// Close отписывает сцену и камеру от состояний
func (s *Scene) Close() {
	s.Picking.ClickRay.Unsubscribe(s.pickToken)
	s.Camera.Close()
}
