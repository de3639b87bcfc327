package logging

import (
	"fmt"
	"sync"
)

// Имена компонентов, для которых заведены отдельные логгеры
const (
	ComponentSim     = "sim"
	ComponentPicking = "picking"
	ComponentAPI     = "api"
	ComponentRender  = "render"
)

// componentLevels: переопределение уровней одного компонента
type componentLevels struct {
	console LogLevel
	file    LogLevel
}

// LoggerManager выдаёт логгеры компонентов и хранит их уровни.
// Уровень, заданный до первого обращения к компоненту, применяется при создании логгера.
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	levels  map[string]componentLevels
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers: make(map[string]*Logger),
		levels:  make(map[string]componentLevels),
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}
	if lv, ok := lm.levels[component]; ok {
		logger.setLevels(lv.console, lv.file)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента; если файл создать не удалось,
// логгер пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}

	defaultLogger.log(WARN, "%v; компонент %s пишет только в консоль", err, component)
	fallback := &Logger{
		component:       component,
		consoleLogger:   defaultLogger.consoleLogger,
		minConsoleLevel: INFO,
		minFileLevel:    ERROR + 1,
	}

	lm.mu.Lock()
	if lv, ok := lm.levels[component]; ok {
		fallback.minConsoleLevel = lv.console
	}
	lm.mu.Unlock()
	return fallback
}

// SetLogLevel задаёт уровни компонента: сразу для существующего логгера
// и для логгера, который будет создан позже
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.levels[component] = componentLevels{console: consoleLevel, file: fileLevel}
	if logger, ok := lm.loggers[component]; ok {
		logger.setLevels(consoleLevel, fileLevel)
	}
}

// ApplyLevels разбирает уровни компонентов из конфигурации (имя компонента → уровень)
// и применяет их к консоли и файлу. При ошибке ничего не применяется.
func (lm *LoggerManager) ApplyLevels(levels map[string]string) error {
	parsed := make(map[string]LogLevel, len(levels))
	for component, name := range levels {
		level, err := ParseLevel(name)
		if err != nil {
			return fmt.Errorf("компонент %s: %w", component, err)
		}
		parsed[component] = level
	}

	for component, level := range parsed {
		lm.SetLogLevel(component, level, level)
	}
	return nil
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие логгера %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// GetComponentLogger возвращает логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetSimLogger() *Logger {
	return GetComponentLogger(ComponentSim)
}

func GetPickingLogger() *Logger {
	return GetComponentLogger(ComponentPicking)
}

func GetAPILogger() *Logger {
	return GetComponentLogger(ComponentAPI)
}

func GetRenderLogger() *Logger {
	return GetComponentLogger(ComponentRender)
}
