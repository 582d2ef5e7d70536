package view

import (
	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/notify"
)

const flashScriptID = "flashToasts"

// Page общие данные полной страницы.
type Page struct {
	Title  string
	Toasts []notify.Toast
}

// DashboardPageData данные оболочки консоли.
type DashboardPageData struct {
	Page
	// Frames последние отрисовки виджетов; отсутствующие слоты показывают загрузку.
	Frames []dashboard.Frame
}

func titled(page Page, fallback string) Page {
	if page.Title == "" {
		page.Title = fallback
	}
	return page
}

func framesByPanel(frames []dashboard.Frame) map[dashboard.PanelID]string {
	out := make(map[dashboard.PanelID]string, len(frames))
	for _, f := range frames {
		out[f.Panel] = f.HTML
	}
	return out
}

// flashToasts отдаёт пустой список вместо null, скрипт консоли ждёт массив.
func flashToasts(toasts []notify.Toast) []notify.Toast {
	if toasts == nil {
		return []notify.Toast{}
	}
	return toasts
}
