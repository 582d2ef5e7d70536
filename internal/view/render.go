package view

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
)

//go:generate templ generate

const (
	unavailableText   = "Unavailable"
	noWithdrawalsText = "No withdrawal requests found"
	noUsersText       = "No users found"
	usersTableColumns = 6
)

var (
	usersHeader       = []string{"S/N", "Full Name", "Email", "UID", "Points", "Action"}
	withdrawalsHeader = []string{"S/N", "Email", "Type", "Amount", "Details", "Status", "Date Requested", "Action"}
)

// PanelRenderer отрисовывает модели виджетов в HTML фрагменты для WebSocket кадров.
type PanelRenderer struct{}

// NewPanelRenderer создаёт отрисовщик виджетов.
func NewPanelRenderer() *PanelRenderer {
	return &PanelRenderer{}
}

// RenderPanel возвращает содержимое слота виджета.
func (r *PanelRenderer) RenderPanel(ctx context.Context, m dashboard.Model) (string, error) {
	var buf bytes.Buffer
	if err := Panel(m).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("view: не удалось отрисовать виджет %s: %w", m.Panel(), err)
	}
	return buf.String(), nil
}

// Panel выбирает компонент по типу модели.
func Panel(m dashboard.Model) templ.Component {
	switch v := m.(type) {
	case dashboard.CountModel:
		return CountValue(v)
	case dashboard.PointsSummaryModel:
		return PointsSummary(v)
	case dashboard.UsersTableModel:
		return UsersTable(v)
	case dashboard.WithdrawalsTableModel:
		return WithdrawalsTable(v)
	case dashboard.LeaderboardModel:
		return Leaderboard(v)
	default:
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return fmt.Errorf("view: неизвестная модель %T", m)
		})
	}
}

type pointsCard struct {
	slot  string
	title string
	value int64
}

func pointsCards(m dashboard.PointsSummaryModel) []pointsCard {
	return []pointsCard{
		{dashboard.SlotTotalPoints, "Total Points", m.Total},
		{dashboard.SlotWeeklyPoints, "Points This Week", m.Weekly},
		{dashboard.SlotMonthlyPoints, "Points This Month", m.Monthly},
	}
}

// formatCount форматирует число с разделителями разрядов: 12345 → 12,345.
func formatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
