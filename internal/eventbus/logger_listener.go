package eventbus

import (
	"github.com/annel0/voxel-sim/internal/logging"
)

// StartLoggingListener подписывается на все публикации шины и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(bus *Bus) Subscription {
	sub := bus.Tap(func(ev Event) {
		logging.Debug("[EventBus] %s %s value=%v delivered=%d", ev.ID, ev.Topic, ev.Value, ev.Delivered)
	})
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub
}
