package dashboard

// PanelID логическое имя слота страницы, который занимает виджет.
type PanelID string

const (
	PanelTotalUsers           PanelID = "totalUsers"
	PanelDailyActiveUsers     PanelID = "dailyActiveUsers"
	PanelPendingWithdrawals   PanelID = "pendingWithdrawals"
	PanelCompletedWithdrawals PanelID = "completedWithdrawals"
	PanelPointsSummary        PanelID = "pointsSummary"
	PanelUsersTable           PanelID = "usersTableBody"
	PanelWithdrawalsTable     PanelID = "withdrawalsTableBody"
	PanelLeaderboard          PanelID = "leaderboard"
)

// Panels все виджеты консоли в порядке отрисовки.
var Panels = []PanelID{
	PanelTotalUsers,
	PanelDailyActiveUsers,
	PanelPendingWithdrawals,
	PanelCompletedWithdrawals,
	PanelPointsSummary,
	PanelUsersTable,
	PanelWithdrawalsTable,
	PanelLeaderboard,
}

// Слоты внутри сводки баллов.
const (
	SlotTotalPoints   = "totalPoints"
	SlotWeeklyPoints  = "weeklyPoints"
	SlotMonthlyPoints = "monthlyPoints"
)

// LeaderboardSize число строк рейтинга.
const LeaderboardSize = 10

// WithdrawalColumns число колонок таблицы заявок.
const WithdrawalColumns = 8
