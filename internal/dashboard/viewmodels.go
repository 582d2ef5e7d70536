package dashboard

// Model неизменяемая модель представления одного виджета.
// Каждая новая модель полностью заменяет предыдущую отрисовку виджета.
type Model interface {
	Panel() PanelID
}

// CountModel число в карточке: пользователи, активные за день, заявки по статусу.
type CountModel struct {
	ID          PanelID `json:"panel"`
	Value       int64   `json:"value"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

func (m CountModel) Panel() PanelID { return m.ID }

// PointsSummaryModel сводка баллов: всего у пользователей, за неделю и за месяц по начислениям.
type PointsSummaryModel struct {
	Total       int64 `json:"total"`
	Weekly      int64 `json:"weekly"`
	Monthly     int64 `json:"monthly"`
	Unavailable bool  `json:"unavailable,omitempty"`
}

func (PointsSummaryModel) Panel() PanelID { return PanelPointsSummary }

// UserRow строка таблицы пользователей.
type UserRow struct {
	Seq        int    `json:"seq"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Points     int64  `json:"points"`
	DateJoined string `json:"date_joined"`
}

// UsersTableModel таблица пользователей в порядке хранилища.
type UsersTableModel struct {
	Rows        []UserRow `json:"rows"`
	Unavailable bool      `json:"unavailable,omitempty"`
}

func (UsersTableModel) Panel() PanelID { return PanelUsersTable }

// WithdrawalRow строка таблицы заявок.
type WithdrawalRow struct {
	Seq         int    `json:"seq"`
	ID          string `json:"id"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Details     string `json:"details"`
	Status      string `json:"status"`
	RawStatus   string `json:"raw_status"`
	RequestedAt string `json:"requested_at"`
	Actionable  bool   `json:"actionable"`
}

// WithdrawalsTableModel таблица заявок, свежие сверху.
type WithdrawalsTableModel struct {
	Rows        []WithdrawalRow `json:"rows"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

func (WithdrawalsTableModel) Panel() PanelID { return PanelWithdrawalsTable }

// Empty сообщает, что заявок нет и вместо таблицы нужна строка-заглушка.
func (m WithdrawalsTableModel) Empty() bool { return len(m.Rows) == 0 }

// LeaderboardEntry позиция рейтинга.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

// LeaderboardModel десятка пользователей с наибольшим балансом.
type LeaderboardModel struct {
	Entries     []LeaderboardEntry `json:"entries"`
	Unavailable bool               `json:"unavailable,omitempty"`
}

func (LeaderboardModel) Panel() PanelID { return PanelLeaderboard }

// Unavailable возвращает модель-заглушку виджета, чьё чтение из хранилища не удалось.
func Unavailable(panel PanelID) Model {
	switch panel {
	case PanelPointsSummary:
		return PointsSummaryModel{Unavailable: true}
	case PanelUsersTable:
		return UsersTableModel{Unavailable: true}
	case PanelWithdrawalsTable:
		return WithdrawalsTableModel{Unavailable: true}
	case PanelLeaderboard:
		return LeaderboardModel{Unavailable: true}
	default:
		return CountModel{ID: panel, Unavailable: true}
	}
}
