package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ignatzorin/rewards-admin/internal/models"
)

// Заглушки для отсутствующих полей.
const (
	PlaceholderNA      = "N/A"
	PlaceholderDash    = "—"
	PlaceholderUnknown = "Unknown"
)

const dateLayout = "1/2/2006"

// BuildUsersTable строит таблицу пользователей в порядке хранилища.
func BuildUsersTable(users []models.User, loc *time.Location) UsersTableModel {
	rows := make([]UserRow, 0, len(users))
	for i := range users {
		u := &users[i]
		rows = append(rows, UserRow{
			Seq:        i + 1,
			ID:         u.ID.String(),
			Name:       orPlaceholder(u.FullName, PlaceholderNA),
			Email:      orPlaceholder(u.Email, PlaceholderNA),
			Points:     u.PointsOrZero(),
			DateJoined: formatDate(u.DateJoined, loc),
		})
	}
	return UsersTableModel{Rows: rows}
}

// SortWithdrawals возвращает копию заявок, отсортированную по времени запроса по убыванию.
// Заявки без времени считаются запрошенными в начале эпохи и идут последними.
// Сортировка устойчивая: равные ключи сохраняют порядок хранилища.
func SortWithdrawals(withdrawals []models.Withdrawal) []models.Withdrawal {
	sorted := make([]models.Withdrawal, len(withdrawals))
	copy(sorted, withdrawals)

	sort.SliceStable(sorted, func(i, j int) bool {
		return requestedKey(&sorted[i]) > requestedKey(&sorted[j])
	})
	return sorted
}

func requestedKey(w *models.Withdrawal) int64 {
	if w.RequestedAt == nil {
		return 0
	}
	return w.RequestedAt.UnixMilli()
}

// BuildWithdrawalsTable строит таблицу заявок, свежие сверху.
func BuildWithdrawalsTable(withdrawals []models.Withdrawal, loc *time.Location) WithdrawalsTableModel {
	sorted := SortWithdrawals(withdrawals)

	rows := make([]WithdrawalRow, 0, len(sorted))
	for i := range sorted {
		w := &sorted[i]
		status := w.Status
		if status == "" {
			status = models.WithdrawalStatusPending
		}
		rows = append(rows, WithdrawalRow{
			Seq:         i + 1,
			ID:          w.ID.String(),
			Email:       orPlaceholder(w.Email, PlaceholderNA),
			Type:        orPlaceholder(w.Type, PlaceholderDash),
			Amount:      formatAmount(w.Amount),
			Details:     FlattenDetails(w.Details),
			Status:      StatusLabel(status),
			RawStatus:   status,
			RequestedAt: formatDate(w.RequestedAt, loc),
			Actionable:  w.IsPending(),
		})
	}
	return WithdrawalsTableModel{Rows: rows}
}

// BuildLeaderboard строит рейтинг из пользователей, уже упорядоченных по баллам.
func BuildLeaderboard(users []models.User) LeaderboardModel {
	n := len(users)
	if n > LeaderboardSize {
		n = LeaderboardSize
	}

	entries := make([]LeaderboardEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			Name:   orPlaceholder(users[i].FullName, PlaceholderUnknown),
			Points: users[i].PointsOrZero(),
		})
	}
	return LeaderboardModel{Entries: entries}
}

// SumPoints складывает балансы, отсутствующее значение считается нулём.
func SumPoints(points []*int64) int64 {
	var total int64
	for _, p := range points {
		if p != nil {
			total += *p
		}
	}
	return total
}

// FlattenDetails превращает реквизиты в строку "ключ: значение" через запятую.
// Ключи сортируются, чтобы одинаковые реквизиты всегда давали одинаковую строку.
func FlattenDetails(d models.WithdrawalDetails) string {
	if d.IsEmpty() {
		return PlaceholderDash
	}
	if d.Fields == nil {
		return d.Text
	}

	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+detailValue(d.Fields[k]))
	}
	return strings.Join(parts, ", ")
}

func detailValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

// StartOfDay возвращает полночь текущих локальных суток.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// WeekAgo возвращает момент ровно семь суток назад.
func WeekAgo(now time.Time) time.Time {
	return now.AddDate(0, 0, -7)
}

// MonthAgo возвращает тот же момент календарным месяцем раньше.
func MonthAgo(now time.Time) time.Time {
	return now.AddDate(0, -1, 0)
}

// StatusLabel возвращает статус с заглавной буквы.
func StatusLabel(status string) string {
	// Caser хранит состояние, поэтому создаётся на каждый вызов.
	return cases.Title(language.English).String(status)
}

func orPlaceholder(s *string, placeholder string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

func formatAmount(amount *float64) string {
	if amount == nil {
		return "0"
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64)
}

func formatDate(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return PlaceholderDash
	}
	return t.In(loc).Format(dateLayout)
}
