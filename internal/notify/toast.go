package notify

import (
	"time"

	"github.com/google/uuid"
)

// Severity уровень всплывающего уведомления.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

const (
	FadeIn  = 50 * time.Millisecond
	Visible = 3 * time.Second
	FadeOut = 300 * time.Millisecond
)

var colors = map[Severity]string{
	Success: "#4CAF50",
	Error:   "#f44336",
	Warning: "#ff9800",
	Info:    "#2196F3",
}

// ColorFor возвращает цвет уровня. Неизвестный уровень отображается как info.
func ColorFor(s Severity) string {
	if c, ok := colors[s]; ok {
		return c
	}
	return colors[Info]
}

// Normalize приводит неизвестный уровень к info.
func Normalize(s Severity) Severity {
	if _, ok := colors[s]; ok {
		return s
	}
	return Info
}

// Toast одно уведомление. У каждого свой ID, поэтому одновременные уведомления
// складываются в стопку, а не заменяют друг друга.
type Toast struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Color     string   `json:"color"`
	FadeInMS  int64    `json:"fade_in_ms"`
	VisibleMS int64    `json:"visible_ms"`
	FadeOutMS int64    `json:"fade_out_ms"`
}

// New создаёт уведомление с фиксированной временной схемой.
func New(message string, severity Severity) Toast {
	severity = Normalize(severity)
	return Toast{
		ID:        "toast-" + uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Color:     ColorFor(severity),
		FadeInMS:  FadeIn.Milliseconds(),
		VisibleMS: Visible.Milliseconds(),
		FadeOutMS: FadeOut.Milliseconds(),
	}
}

// Lifetime полное время жизни уведомления до удаления со страницы.
func (t Toast) Lifetime() time.Duration {
	return time.Duration(t.FadeInMS+t.VisibleMS+t.FadeOutMS) * time.Millisecond
}
