package app

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/voxel-sim/internal/logging"
)

// ErrLoopStopped возвращается Do, если цикл завершился до выполнения задачи
var ErrLoopStopped = errors.New("цикл кадров остановлен")

// Framer продвигается циклом каждый кадр
type Framer interface {
	Frame(ctx context.Context, dt float64) error
}

// Loop вызывает Frame с измеренным шагом времени на одной горутине
// и выполняет между кадрами задачи, переданные через Do.
type Loop struct {
	framer   Framer
	interval time.Duration
	tasks    chan func()
	done     chan struct{}
	logger   *logging.Logger
}

// NewLoop создаёт цикл с частотой frameRate кадров в секунду
func NewLoop(framer Framer, frameRate int, logger *logging.Logger) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Loop{
		framer:   framer,
		interval: time.Second / time.Duration(frameRate),
		tasks:    make(chan func()),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Run выполняет цикл до отмены ctx. Ошибки кадров логируются и не останавливают цикл.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("🎮 Цикл кадров запущен (интервал %s)", l.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Цикл кадров остановлен")
			return nil
		case task := <-l.tasks:
			task()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := l.framer.Frame(ctx, dt); err != nil {
				l.logger.Error("Ошибка кадра: %v", err)
			}
		}
	}
}

// Do выполняет fn на горутине цикла и ждёт завершения
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
