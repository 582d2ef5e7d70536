package dashboard

import (
	"context"
	"time"

	"github.com/ignatzorin/rewards-admin/internal/models"
)

// UserStore чтения коллекции users, нужные панелям.
type UserStore interface {
	CountAll(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	ListInStoreOrder(ctx context.Context) ([]models.User, error)
	ListPoints(ctx context.Context) ([]*int64, error)
	TopByPoints(ctx context.Context, limit int) ([]models.User, error)
}

// WithdrawalStore чтения коллекции withdrawals.
type WithdrawalStore interface {
	ListAll(ctx context.Context) ([]models.Withdrawal, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// EarningStore агрегаты коллекции earnings.
type EarningStore interface {
	SumPointsSince(ctx context.Context, since time.Time) (int64, error)
}

// Stores источники данных панелей.
type Stores struct {
	Users       UserStore
	Withdrawals WithdrawalStore
	Earnings    EarningStore
}

// loader описывает, как виджет получает данные.
// Пустая collection означает разовый запрос, иначе живую подписку на коллекцию.
type loader struct {
	panel      PanelID
	collection string
	load       func(ctx context.Context) (Model, error)
}

func (c *Controller) loaders() []loader {
	s := c.stores
	return []loader{
		{
			panel:      PanelTotalUsers,
			collection: models.CollectionUsers,
			load: func(ctx context.Context) (Model, error) {
				n, err := s.Users.CountAll(ctx)
				return CountModel{ID: PanelTotalUsers, Value: n}, err
			},
		},
		{
			panel: PanelDailyActiveUsers,
			load: func(ctx context.Context) (Model, error) {
				n, err := s.Users.CountActiveSince(ctx, StartOfDay(c.now(), c.loc))
				return CountModel{ID: PanelDailyActiveUsers, Value: n}, err
			},
		},
		{
			panel:      PanelPendingWithdrawals,
			collection: models.CollectionWithdrawals,
			load: func(ctx context.Context) (Model, error) {
				n, err := s.Withdrawals.CountByStatus(ctx, models.WithdrawalStatusPending)
				return CountModel{ID: PanelPendingWithdrawals, Value: n}, err
			},
		},
		{
			panel:      PanelCompletedWithdrawals,
			collection: models.CollectionWithdrawals,
			load: func(ctx context.Context) (Model, error) {
				n, err := s.Withdrawals.CountByStatus(ctx, models.WithdrawalStatusCompleted)
				return CountModel{ID: PanelCompletedWithdrawals, Value: n}, err
			},
		},
		{
			panel: PanelPointsSummary,
			load:  c.loadPointsSummary,
		},
		{
			panel:      PanelUsersTable,
			collection: models.CollectionUsers,
			load: func(ctx context.Context) (Model, error) {
				users, err := s.Users.ListInStoreOrder(ctx)
				if err != nil {
					return nil, err
				}
				return BuildUsersTable(users, c.loc), nil
			},
		},
		{
			panel:      PanelWithdrawalsTable,
			collection: models.CollectionWithdrawals,
			load: func(ctx context.Context) (Model, error) {
				withdrawals, err := s.Withdrawals.ListAll(ctx)
				if err != nil {
					return nil, err
				}
				return BuildWithdrawalsTable(withdrawals, c.loc), nil
			},
		},
		{
			panel:      PanelLeaderboard,
			collection: models.CollectionUsers,
			load: func(ctx context.Context) (Model, error) {
				users, err := s.Users.TopByPoints(ctx, LeaderboardSize)
				if err != nil {
					return nil, err
				}
				return BuildLeaderboard(users), nil
			},
		},
	}
}

// loadPointsSummary считает три агрегата последовательно: это один разовый запрос виджета.
func (c *Controller) loadPointsSummary(ctx context.Context) (Model, error) {
	points, err := c.stores.Users.ListPoints(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	weekly, err := c.stores.Earnings.SumPointsSince(ctx, WeekAgo(now))
	if err != nil {
		return nil, err
	}
	monthly, err := c.stores.Earnings.SumPointsSince(ctx, MonthAgo(now))
	if err != nil {
		return nil, err
	}

	return PointsSummaryModel{Total: SumPoints(points), Weekly: weekly, Monthly: monthly}, nil
}
