package db

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
)

// Publisher принимает имя изменившейся коллекции.
type Publisher interface {
	Publish(collection string)
}

// ChangeChannel канал LISTEN/NOTIFY, в который пишут триггеры миграции 002_change_feed.sql.
const ChangeChannel = "console_changes"

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// ChangeListener слушает канал LISTEN/NOTIFY и пересылает имена таблиц в Publisher.
type ChangeListener struct {
	dsn       string
	publisher Publisher
	log       *logrus.Entry
}

// NewChangeListener создаёт слушателя канала изменений.
func NewChangeListener(dsn string, publisher Publisher) *ChangeListener {
	return &ChangeListener{
		dsn:       dsn,
		publisher: publisher,
		log:       logger.Entry("change_listener").WithField("channel", ChangeChannel),
	}
}

// Run слушает канал до отмены ctx.
func (l *ChangeListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, listenerMinReconnect, listenerMaxReconnect, l.onEvent)
	defer listener.Close()

	if err := listener.Listen(ChangeChannel); err != nil {
		return err
	}
	l.log.Info("подписка на изменения хранилища установлена")

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			l.dispatch(n)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.log.WithError(err).Warn("ping слушателя не прошёл")
			}
		}
	}
}

// dispatch пересылает уведомление. nil приходит после переподключения:
// уведомления за время разрыва потеряны, поэтому перечитываются все коллекции.
func (l *ChangeListener) dispatch(n *pq.Notification) {
	if n == nil {
		for _, collection := range models.ValidCollections {
			l.publisher.Publish(collection)
		}
		return
	}

	if !models.IsValidCollection(n.Extra) {
		l.log.WithField("payload", n.Extra).Warn("неизвестная коллекция в уведомлении")
		return
	}
	l.publisher.Publish(n.Extra)
}

func (l *ChangeListener) onEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		l.log.Debug("слушатель подключён")
	case pq.ListenerEventDisconnected:
		l.log.WithError(err).Warn("слушатель отключён")
	case pq.ListenerEventReconnected:
		l.log.Info("слушатель переподключён")
	case pq.ListenerEventConnectionAttemptFailed:
		l.log.WithError(err).Warn("не удалось переподключить слушателя")
	}
}
