package view

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/notify"
)

func renderPage(t *testing.T, page templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, page.Render(context.Background(), &buf))
	return buf.String()
}

func TestLoginPage_FormSlots(t *testing.T) {
	html := renderPage(t, LoginPage(Page{}))

	assert.Contains(t, html, `id="adminLoginForm"`)
	assert.Contains(t, html, `id="adminEmail"`)
	assert.Contains(t, html, `id="adminPassword"`)
	assert.Contains(t, html, "<title>Admin Login</title>")
}

func TestLayout_FlashToastsAreEscapedJSON(t *testing.T) {
	toast := notify.New("</script><b>hi</b>", notify.Warning)

	html := renderPage(t, LandingPage(Page{Toasts: []notify.Toast{toast}}))

	payload := flashPayload(t, html)
	assert.Contains(t, payload, toast.ID)
	assert.NotContains(t, html, "</script><b>")
	assert.Contains(t, payload, `\u003c/script\u003e`)
}

// flashPayload возвращает содержимое JSON скрипта с отложенными уведомлениями.
func flashPayload(t *testing.T, html string) string {
	t.Helper()
	start := strings.Index(html, `id="flashToasts"`)
	require.GreaterOrEqual(t, start, 0)
	rest := html[start:]
	open := strings.Index(rest, ">")
	end := strings.Index(rest, "</script>")
	require.True(t, open >= 0 && end > open)
	return strings.TrimSpace(rest[open+1 : end])
}

func TestLayout_NoToastsRendersEmptyList(t *testing.T) {
	html := renderPage(t, LandingPage(Page{}))

	assert.Contains(t, html, `type="application/json"`)
	assert.Equal(t, "[]", flashPayload(t, html))
}

func TestDashboardPage_SlotsAndFrames(t *testing.T) {
	data := DashboardPageData{Frames: []dashboard.Frame{
		{Panel: dashboard.PanelTotalUsers, HTML: "42"},
	}}

	html := renderPage(t, DashboardPage(data))

	for _, id := range []string{
		"totalUsers", "dailyActiveUsers", "pendingWithdrawals", "completedWithdrawals",
		"totalPoints", "weeklyPoints", "monthlyPoints",
		"usersTableBody", "withdrawalsTableBody", "leaderboard", "refreshBtn",
	} {
		assert.Contains(t, html, `id="`+id+`"`, id)
	}
	assert.Contains(t, html, `id="totalUsers">42</p>`)
	assert.Contains(t, html, `id="dailyActiveUsers">Loading...</p>`)
}

func TestStatic_ContainsConsoleAssets(t *testing.T) {
	for _, name := range []string{"console.js", "console.css"} {
		_, err := fs.Stat(Static(), name)
		assert.NoError(t, err, name)
	}
}
