package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/telegram/keyboard"
	"github.com/m3rciful/autoservice-bot/internal/conversation"
	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// Callback ids of the inline buttons.
const (
	cbMenu              = "menu"
	cbCancel            = "cancel"
	cbRegisterUser      = "register_user"
	cbTotalInfo         = "total_info"
	cbInfoClients       = "info_clients"
	cbInfoServices      = "info_services"
	cbInfoBranches      = "info_branches"
	cbInfoParts         = "info_parts"
	cbViewOrders        = "view_orders"
	cbReportOrders      = "report_orders"
	cbExportReport      = "export_report"
	cbCreateAppointment = "create_appointment"
	cbSearchClient      = "search_client"
)

var menuButton = keyboard.Button{Label: "Меню", ID: cbMenu}

func menuRows() [][]keyboard.Button {
	return keyboard.Grid([]keyboard.Button{
		{Label: "🔓 Регистрация пользователей", ID: cbRegisterUser},
		{Label: "📊 Общая информация", ID: cbTotalInfo},
		{Label: "📩 Просмотр заказов", ID: cbViewOrders},
		{Label: "📈 Отчет по заказам", ID: cbReportOrders},
		{Label: "✏️ Создание заявки", ID: cbCreateAppointment},
		{Label: "🔍 Поиск клиента", ID: cbSearchClient},
	}, 2)
}

func infoRows() [][]keyboard.Button {
	return append(keyboard.Grid([]keyboard.Button{
		{Label: "👨‍💼 Клиенты", ID: cbInfoClients},
		{Label: "🔨 Популярные услуги", ID: cbInfoServices},
		{Label: "💰 Доход филиалов", ID: cbInfoBranches},
		{Label: "📉 Заканчивающиеся детали", ID: cbInfoParts},
	}, 2), []keyboard.Button{menuButton})
}

// roleRows lists every role, two per row, followed by the menu button.
func roleRows() [][]keyboard.Button {
	buttons := make([]keyboard.Button, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		buttons = append(buttons, keyboard.Button{Label: r.Icon() + " " + r.Title(), ID: string(r)})
	}
	return append(keyboard.Grid(buttons, 2), []keyboard.Button{menuButton})
}

// markupFor returns the keyboard for kb, or nil for none.
func markupFor(kb conversation.Keyboard) *tele.ReplyMarkup {
	switch kb {
	case conversation.KeyboardMenu:
		return keyboard.Inline(menuRows()...)
	case conversation.KeyboardInfo:
		return keyboard.Inline(infoRows()...)
	case conversation.KeyboardRoles:
		return keyboard.Inline(roleRows()...)
	case conversation.KeyboardCancel:
		return keyboard.Inline([]keyboard.Button{{Label: "❌ Отмена", ID: cbCancel}})
	case conversation.KeyboardReport:
		return keyboard.Extend(keyboard.Inline(menuRows()...),
			[]keyboard.Button{{Label: "📥 Скачать XLSX", ID: cbExportReport}})
	}
	return nil
}
