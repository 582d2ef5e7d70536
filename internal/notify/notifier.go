package notify

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/logger"
)

// Pusher доставляет кадры во вкладки браузера с данным ключом клиента.
type Pusher interface {
	PublishToClient(clientKey string, payload []byte)
	ClientCount(clientKey string) int
}

// FlashParker хранит уведомления до следующей полной отрисовки страницы.
type FlashParker interface {
	Park(clientKey string, toast Toast, ttl time.Duration)
}

// RedirectGrace запас времени на переход между страницами для отложенных уведомлений.
const RedirectGrace = 5 * time.Second

// Frame кадр WebSocket протокола консоли.
type Frame struct {
	Type    string `json:"type"`
	Panel   string `json:"panel,omitempty"`
	HTML    string `json:"html,omitempty"`
	Toast   *Toast `json:"toast,omitempty"`
	URL     string `json:"url,omitempty"`
	DelayMS int64  `json:"delay_ms,omitempty"`
}

// Notifier отправляет уведомления: в открытые вкладки через WebSocket,
// а если их нет, откладывает до следующей отрисовки страницы.
type Notifier struct {
	pusher Pusher
	flash  FlashParker
	log    *logrus.Entry
}

// NewNotifier создаёт отправителя уведомлений.
func NewNotifier(pusher Pusher, flash FlashParker) *Notifier {
	return &Notifier{pusher: pusher, flash: flash, log: logger.Entry("notify")}
}

// Notify создаёт и доставляет уведомление клиенту.
func (n *Notifier) Notify(clientKey, message string, severity Severity) Toast {
	toast := New(message, severity)
	n.Deliver(clientKey, toast)
	return toast
}

// Deliver доставляет готовое уведомление.
func (n *Notifier) Deliver(clientKey string, toast Toast) {
	if clientKey == "" {
		return
	}
	if n.pusher != nil && n.pusher.ClientCount(clientKey) > 0 {
		n.push(clientKey, Frame{Type: "toast", Toast: &toast})
		return
	}
	if n.flash != nil {
		n.flash.Park(clientKey, toast, toast.Lifetime()+RedirectGrace)
	}
}

// Park откладывает уведомление до следующей страницы независимо от открытых вкладок.
func (n *Notifier) Park(clientKey string, toast Toast) {
	if clientKey == "" || n.flash == nil {
		return
	}
	n.flash.Park(clientKey, toast, toast.Lifetime()+RedirectGrace)
}

// Redirect просит вкладки клиента перейти на url.
func (n *Notifier) Redirect(clientKey, url string, delay time.Duration) {
	if clientKey == "" || n.pusher == nil {
		return
	}
	n.push(clientKey, Frame{Type: "redirect", URL: url, DelayMS: delay.Milliseconds()})
}

// Panel отправляет вкладкам клиента новый HTML виджета.
func (n *Notifier) Panel(clientKey, panel, html string) {
	if clientKey == "" || n.pusher == nil {
		return
	}
	n.push(clientKey, Frame{Type: "panel", Panel: panel, HTML: html})
}

func (n *Notifier) push(clientKey string, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		n.log.WithError(err).Error("не удалось сериализовать кадр")
		return
	}
	n.pusher.PublishToClient(clientKey, payload)
}
