package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-sim/internal/logging"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	World     WorldConfig     `yaml:"world"`
	Loop      LoopConfig      `yaml:"loop"`
	Blocks    BlocksConfig    `yaml:"blocks"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WindowConfig задаёт начальный размер окна, по которому камера строит лучи
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig задаёт положение и ортографический объём камеры
type CameraConfig struct {
	LookFrom   [3]float32 `yaml:"look_from"`
	LookAt     [3]float32 `yaml:"look_at"`
	Up         [3]float32 `yaml:"up"`
	OrthoWidth float32    `yaml:"ortho_width"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
}

// WorldConfig управляет генерацией рельефа вокруг начального чанка
type WorldConfig struct {
	Seed          int64  `yaml:"seed"`
	Terrain       bool   `yaml:"terrain"`
	TerrainRadius int    `yaml:"terrain_radius"`
	TerrainBlock  string `yaml:"terrain_block"`
	SeedBlocks    bool   `yaml:"seed_blocks"` // Начальные трава и движущаяся трава
}

// LoopConfig задаёт частоту кадров хост-цикла
type LoopConfig struct {
	FrameRate int `yaml:"frame_rate"`
}

// BlocksConfig указывает YAML-каталог блоков (пустой путь означает встроенный каталог)
type BlocksConfig struct {
	Catalog string `yaml:"catalog"`
}

// LoggingConfig задаёт директорию и уровни логов
type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
	// Уровни отдельных компонентов (sim, picking, api, render) для консоли и файла
	Components map[string]string `yaml:"components"`
}

// ServerConfig настраивает HTTP API инспекции
type ServerConfig struct {
	Enabled  bool `yaml:"enabled"`
	RESTPort int  `yaml:"rest_port"`
}

// TelemetryConfig настраивает экспорт трассировок OpenTelemetry
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Window: WindowConfig{Width: 640, Height: 480},
		Camera: CameraConfig{
			LookFrom:   [3]float32{0, 1.5, 6},
			LookAt:     [3]float32{0, 0, 0},
			Up:         [3]float32{0, 1, 0},
			OrthoWidth: 8,
			Near:       0.01,
			Far:        1000,
		},
		World: WorldConfig{
			Seed:          1,
			TerrainRadius: 1,
			TerrainBlock:  "grass",
			SeedBlocks:    true,
		},
		Loop:    LoopConfig{FrameRate: 60},
		Logging: LoggingConfig{Dir: "logs", ConsoleLevel: "INFO", FileLevel: "TRACE"},
		Server:  ServerConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-sim",
			Endpoint:    "localhost:4318",
		},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG; без файла возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return Default(), nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	return Parse(data)
}

// Parse разбирает YAML поверх значений по умолчанию и проверяет результат
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить по умолчанию
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: размер %dx%d должен быть положительным", c.Window.Width, c.Window.Height))
	}
	if c.Camera.OrthoWidth <= 0 {
		errs = append(errs, fmt.Errorf("camera: ortho_width должен быть положительным"))
	}
	if c.Camera.Near >= c.Camera.Far {
		errs = append(errs, fmt.Errorf("camera: near (%v) должен быть меньше far (%v)", c.Camera.Near, c.Camera.Far))
	}
	if c.Loop.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("loop: frame_rate должен быть положительным"))
	}
	if c.World.TerrainRadius < 0 {
		errs = append(errs, fmt.Errorf("world: terrain_radius не может быть отрицательным"))
	}
	if c.World.Terrain && c.World.TerrainBlock == "" {
		errs = append(errs, fmt.Errorf("world: terrain_block обязателен при terrain: true"))
	}
	for _, level := range []string{c.Logging.ConsoleLevel, c.Logging.FileLevel} {
		if _, err := logging.ParseLevel(level); err != nil {
			errs = append(errs, fmt.Errorf("logging: %w", err))
		}
	}
	for component, level := range c.Logging.Components {
		if _, err := logging.ParseLevel(level); err != nil {
			errs = append(errs, fmt.Errorf("logging.components.%s: %w", component, err))
		}
	}
	if c.Server.RESTPort < 0 || c.Server.RESTPort > 65535 {
		errs = append(errs, fmt.Errorf("server: некорректный rest_port %d", c.Server.RESTPort))
	}
	return errors.Join(errs...)
}
