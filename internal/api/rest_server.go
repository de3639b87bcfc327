package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-sim/internal/app"
	"github.com/annel0/voxel-sim/internal/camera"
	"github.com/annel0/voxel-sim/internal/input"
	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/middleware"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
)

// Executor выполняет функцию в горутине, владеющей сценой (app.Loop)
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// RestServer обслуживает HTTP API инспекции запущенной сцены
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	scene   *app.Scene
	exec    Executor
	mesh    *app.MeshSummary
	metrics *ServerMetrics
	logger  *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                // адрес для запуска сервера, например ":8088"
	Scene    *app.Scene            // инспектируемая сцена
	Executor Executor              // доступ к сцене из обработчиков
	Mesh     *app.MeshSummary      // может быть nil
	Registry *prometheus.Registry  // метрики для /metrics; без него /metrics не создаётся
	Logger   *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Scene == nil || config.Executor == nil {
		return nil, errors.New("api: не заданы сцена или исполнитель")
	}
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())
	router.Use(otelgin.Middleware("voxel_api"))

	if config.Registry != nil {
		promMw := middleware.NewPrometheusMiddleware("voxel_api", config.Registry)
		router.Use(promMw.Handler())
		promMw.RegisterMetricsEndpoint(router, config.Registry)
	}

	rs := &RestServer{
		router:  router,
		scene:   config.Scene,
		exec:    config.Executor,
		mesh:    config.Mesh,
		metrics: NewServerMetrics(),
		logger:  config.Logger,
	}
	rs.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// Handler возвращает HTTP-обработчик (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.GET("/chunks", rs.handleChunks)
		api.GET("/blocks/:x/:y/:z", rs.handleGetBlock)
		api.POST("/pick", rs.handlePick)
		api.POST("/raycast", rs.handleRaycast)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BlockResponse описывает блок в позиции мира
type BlockResponse struct {
	Position     vec.Vec3 `json:"position"`
	ID           uint32   `json:"id"`
	TypeID       uint16   `json:"type_id"`
	InstanceData uint16   `json:"instance_data"`
	Name         string   `json:"name"`
	Empty        bool     `json:"empty"`
}

// PickRequest описывает клик в пиксельных координатах окна
type PickRequest struct {
	X *float32 `json:"x" binding:"required"`
	Y *float32 `json:"y" binding:"required"`
}

// RaycastRequest задаёт луч в мировых координатах
type RaycastRequest struct {
	Origin    [3]float32 `json:"origin"`
	Direction [3]float32 `json:"direction" binding:"required"`
}

// PickResponse содержит результат пересечения луча с миром
type PickResponse struct {
	Hit       bool       `json:"hit"`
	Position  *vec.Vec3  `json:"position,omitempty"`
	Origin    [3]float32 `json:"origin"`
	Direction [3]float32 `json:"direction"`
}

func newPickResponse(p input.Pick) PickResponse {
	resp := PickResponse{
		Hit:       p.Hit,
		Origin:    p.Ray.Origin,
		Direction: p.Ray.Direction,
	}
	if p.Hit {
		pos := p.Position
		resp.Position = &pos
	}
	return resp
}

// onScene выполняет fn в горутине сцены; при ошибке отвечает 503
func (rs *RestServer) onScene(c *gin.Context, fn func()) bool {
	if err := rs.exec.Do(c.Request.Context(), fn); err != nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Сцена недоступна: %v", err),
		})
		return false
	}
	return true
}

// handleStats возвращает статистику сцены и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	var sceneStats app.Stats
	if !rs.onScene(c, func() { sceneStats = rs.scene.Stats() }) {
		return
	}

	stats := map[string]interface{}{
		"scene": sceneStats,
	}
	if rs.mesh != nil {
		stats["mesh"] = rs.mesh.Stats()
	}

	cpuPercent, _ := rs.metrics.GetCPUUsage()
	rssMB, _ := rs.metrics.GetRSS()
	stats["server"] = map[string]interface{}{
		"uptime":      rs.metrics.GetUptime(),
		"rss_mb":      fmt.Sprintf("%.2f", rssMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"server_time": time.Now().Unix(),
	}
	stats["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleChunks возвращает начала загруженных чанков
func (rs *RestServer) handleChunks(c *gin.Context) {
	origins := rs.scene.World.ChunkOrigins()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список чанков",
		Data: map[string]interface{}{
			"chunks": origins,
			"total":  len(origins),
		},
	})
}

// handleGetBlock возвращает блок в мировой позиции
func (rs *RestServer) handleGetBlock(c *gin.Context) {
	pos, err := parsePosition(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	var (
		resp   BlockResponse
		getErr error
	)
	ok := rs.onScene(c, func() {
		id, err := rs.scene.World.GetBlock(pos)
		if err != nil {
			getErr = err
			return
		}
		resp = BlockResponse{
			Position:     pos,
			ID:           uint32(id),
			TypeID:       uint16(id.TypeID()),
			InstanceData: id.InstanceData(),
			Name:         rs.scene.Registry.Name(id),
			Empty:        id.IsEmpty(),
		}
	})
	if !ok {
		return
	}

	if errors.Is(getErr, world.ErrChunkNotLoaded) {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: getErr.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Блок получен",
		Data:    resp,
	})
}

func parsePosition(c *gin.Context) (vec.Vec3, error) {
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return vec.Vec3{}, fmt.Errorf("некорректная координата %s: %q", name, c.Param(name))
		}
		coords[i] = v
	}
	return vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// handlePick имитирует клик левой кнопкой в точке окна
func (rs *RestServer) handlePick(c *gin.Context) {
	var req PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	var (
		result  input.Pick
		pickErr error
	)
	if !rs.onScene(c, func() { result, pickErr = rs.scene.Click(mgl32.Vec2{*req.X, *req.Y}) }) {
		return
	}

	if errors.Is(pickErr, camera.ErrEmptyWindow) {
		c.JSON(http.StatusConflict, GenericResponse{
			Success: false,
			Message: pickErr.Error(),
		})
		return
	}
	if pickErr != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: pickErr.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Выбор выполнен",
		Data:    newPickResponse(result),
	})
}

// handleRaycast пересекает произвольный луч с миром
func (rs *RestServer) handleRaycast(c *gin.Context) {
	var req RaycastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	ray := world.Ray{Origin: mgl32.Vec3(req.Origin), Direction: mgl32.Vec3(req.Direction)}
	if ray.Direction.Len() == 0 {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Нулевое направление луча",
		})
		return
	}

	// gin переиспользует *gin.Context после выхода из обработчика, а задача
	// может выполниться позже, поэтому в замыкание попадает только ctx
	ctx := c.Request.Context()
	var result input.Pick
	if !rs.onScene(c, func() { result = rs.scene.Pick(ctx, ray) }) {
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Луч обработан",
		Data:    newPickResponse(result),
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.server.Addr)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
