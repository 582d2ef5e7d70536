package view

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
)

func render(t *testing.T, m dashboard.Model) string {
	t.Helper()
	html, err := NewPanelRenderer().RenderPanel(context.Background(), m)
	require.NoError(t, err)
	return html
}

func TestCountValue_ThousandsSeparator(t *testing.T) {
	html := render(t, dashboard.CountModel{ID: dashboard.PanelTotalUsers, Value: 1234567})
	assert.Equal(t, "1,234,567", html)
}

func TestCountValue_Unavailable(t *testing.T) {
	html := render(t, dashboard.Unavailable(dashboard.PanelPendingWithdrawals))
	assert.Contains(t, html, "Unavailable")
}

func TestPointsSummary_FillsThreeSlots(t *testing.T) {
	html := render(t, dashboard.PointsSummaryModel{Total: 150, Weekly: 1200, Monthly: 0})

	assert.Contains(t, html, `id="totalPoints">150<`)
	assert.Contains(t, html, `id="weeklyPoints">1,200<`)
	assert.Contains(t, html, `id="monthlyPoints">0<`)
}

func TestUsersTable_RowLayout(t *testing.T) {
	model := dashboard.UsersTableModel{Rows: []dashboard.UserRow{
		{Seq: 1, ID: "u-1", Name: "Jane Doe", Email: "jane@x.com", Points: 150},
	}}

	html := render(t, model)

	assert.Contains(t, html, "<th>S/N</th><th>Full Name</th><th>Email</th><th>UID</th><th>Points</th><th>Action</th>")
	assert.Contains(t, html, "<td>1</td><td>Jane Doe</td><td>jane@x.com</td><td>u-1</td><td>150</td>")
	assert.Contains(t, html, `data-action="remove-user" data-id="u-1">Remove</button>`)
}

func TestUsersTable_EscapesStoreText(t *testing.T) {
	model := dashboard.UsersTableModel{Rows: []dashboard.UserRow{
		{Seq: 1, ID: "u-1", Name: `<script>alert("x")</script>`, Email: "a@b.c"},
	}}

	html := render(t, model)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestWithdrawalsTable_ActionsOnlyForPending(t *testing.T) {
	model := dashboard.WithdrawalsTableModel{Rows: []dashboard.WithdrawalRow{
		{Seq: 1, ID: "w-pending", Status: "Pending", Actionable: true},
		{Seq: 2, ID: "w-done", Status: "Completed", RawStatus: "completed"},
		{Seq: 3, ID: "w-canceled", Status: "Canceled", RawStatus: "canceled"},
	}}

	html := render(t, model)
	rows := strings.Split(html, "</tr>")
	require.Len(t, rows, 5) // заголовок, три строки и хвост

	pending, completed, canceled := rows[1], rows[2], rows[3]
	assert.Contains(t, pending, ">Pay</button>")
	assert.Contains(t, pending, ">Reject</button>")

	for _, row := range []string{completed, canceled} {
		assert.NotContains(t, row, "Pay")
		assert.NotContains(t, row, "Reject")
		assert.Contains(t, row, `class="status-muted"`)
	}
	assert.Contains(t, completed, `<td>Completed</td>`)
	assert.Contains(t, completed, `style="color:gray;">completed</span>`)
	assert.Contains(t, canceled, `style="color:gray;">canceled</span>`)
}

func TestWithdrawalsTable_EmptyRendersSinglePlaceholder(t *testing.T) {
	html := render(t, dashboard.WithdrawalsTableModel{})

	assert.Equal(t, 1, strings.Count(html, "<tr"))
	assert.Contains(t, html, `colspan="8"`)
	assert.Contains(t, html, "No withdrawal requests found")
	assert.NotContains(t, html, "<th>")
}

func TestWithdrawalsTable_Columns(t *testing.T) {
	model := dashboard.WithdrawalsTableModel{Rows: []dashboard.WithdrawalRow{{
		Seq: 1, ID: "w-1", Email: "a@b.c", Type: "paypal", Amount: "25.5",
		Details: "account: a@b.c", Status: "Pending", RequestedAt: "3/1/2024", Actionable: true,
	}}}

	html := render(t, model)

	assert.Equal(t, dashboard.WithdrawalColumns, strings.Count(html, "<th>"))
	assert.Contains(t, html, "<td>1</td><td>a@b.c</td><td>paypal</td><td>25.5</td><td>account: a@b.c</td><td>Pending</td><td>3/1/2024</td>")
}

func TestLeaderboard_Entries(t *testing.T) {
	model := dashboard.LeaderboardModel{Entries: []dashboard.LeaderboardEntry{
		{Rank: 1, Name: "Ann", Points: 300},
		{Rank: 2, Name: "Unknown", Points: 0},
	}}

	html := render(t, model)

	assert.Equal(t, "<li><strong>#1</strong> Ann — 300 pts</li><li><strong>#2</strong> Unknown — 0 pts</li>", html)
}

func TestRenderPanel_UnknownModel(t *testing.T) {
	_, err := NewPanelRenderer().RenderPanel(context.Background(), unknownModel{})
	assert.Error(t, err)
}

type unknownModel struct{}

func (unknownModel) Panel() dashboard.PanelID { return "mystery" }
