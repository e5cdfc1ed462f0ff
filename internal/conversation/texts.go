package conversation

import (
	"fmt"

	"github.com/m3rciful/autoservice-bot/core/telegram/format"
)

const (
	textMenu            = "<b>Меню</b>\n\nВыберите нужную функцию и нажмите на кнопку"
	textInfo            = "Выберите информацию, которую хотите просмотреть"
	textAskUsername     = "🔖 Введите username:"
	textUsernameTaken   = "🚫 Данный username уже занят. Используйте другой username"
	textBadUsername     = "🚫 Username должен быть непустым и не длиннее 64 символов"
	textAskPassword     = "🔖 Введите пароль:"
	textBadPassword     = "🚫 Пароль должен быть непустым и не длиннее 72 байт"
	textChooseRole      = "🔖 Выберите роль"
	textRegistered      = "✅ Пользователь успешно зарегистрирован"
	textNoRegistration  = "🚫 Регистрация не начата. Выберите функцию в меню"
	textAskClientID     = "Напишите id клиента"
	textAskBranchID     = "Напишите id филиала"
	textAskServiceID    = "Напишите id услуги"
	textAppointmentDone = "✅ Заявка успешно создана"
	textAskQuery        = "🔖 Введите строку для поиска"
	textCancelled       = "❌ Действие отменено"
	textNothingToCancel = "Нечего отменять"
	textExportCaption   = "📈 Отчет по заказам"
)

const textHelp = "<b>Команды</b>\n\n" +
	"/start - начать работу\n" +
	"/menu - главное меню\n" +
	"/cancel - отменить текущее действие\n" +
	"/help - эта справка"

func welcomeText(name string) string {
	return fmt.Sprintf("<b>Добро пожаловать, %s!</b>\n\nВ этом боте можете управлять СУБД для авто/мото салонов",
		format.EscapeHTML(name))
}

func failureText(err error) string {
	return "🚫 Ошибка " + format.EscapeHTML(err.Error())
}
