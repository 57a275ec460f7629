package flow

import "fmt"

// User-facing texts. WhatsApp renders *bold* and `mono` markdown.
const (
	textAskName       = "👋 Для начала введите *Фамилию Имя* (например: *Иванов Иван*)."
	textAskNameChange = "✏️ Введите *Фамилию Имя* для изменения (например: *Иванов Иван*):"
	textAskNameShort  = "Введите *Фамилию Имя* для регистрации."
	textNameInvalid   = "Введите Фамилию и Имя (через пробел). Пример: *Иванов Иван*"

	textMoreMenu   = "Доп. меню:"
	textPickPeriod = "Выберите период статистики:"

	textStale        = "❌ Команда устарела. Откройте меню заново."
	textStaleData    = "❌ Команда устарела или повреждена. Откройте меню заново."
	textSessionStale = "❌ Данные сессии устарели. Откройте меню заново."
	textBadCommand   = "❌ Не удалось разобрать команду."
	textNoRights     = "❌ Нет прав"
	textRestart      = "Что-то пошло не так. Начните заново."

	textPickWorkGroup = "Выберите *тип работы*:"
	textPickActivity  = "Выберите *вид работы*:"
	textPickLocGroup  = "Выберите *локацию*:"
	textPickLocation  = "Выберите *место*:"
	textPickDate      = "Выберите *дату*:"
	textPickHours     = "Выберите *кол-во часов*:"

	textActivityGone = "❌ Вид работы не найден. Начните заново."
	textLocationGone = "❌ Локация не найдена. Начните заново."

	textNoRecentRecords = "📝 За последние 24 часа записей нет."
	textNoRecords       = "📝 Записей нет."
	textDeleted         = "✅ Удалено\n\n📝 Записей нет."
	textDeleteFailed    = "❌ Не получилось удалить"
	textUpdated         = "✅ Обновлено"
	textUpdatedEmpty    = "✅ Обновлено\n\n📝 Записей нет."
	textUpdateFailed    = "❌ Не получилось обновить"

	textAdminMenu     = "⚙️ *Админ-панель*:"
	textAdminActs     = "⚙️ *Управление работами*:"
	textAdminLocs     = "⚙️ *Управление локациями*:"
	textAskActAdd     = "Введите название *работы* для добавления:"
	textAskActDel     = "Введите точное название *работы* для удаления:"
	textAskLocAdd     = "Введите название *локации* для добавления:"
	textAskLocDel     = "Введите точное название *локации* для удаления:"
	textRefAdded      = "✅ Добавлено"
	textRefDuplicate  = "⚠️ Уже существует"
	textRefRemoved    = "✅ Удалено"
	textRefNotFound   = "❌ Не найдено"
	textExportRunning = "⏳ Экспортирую отчеты..."

	textCancelled = "Действие отменено. Возвращаю в главное меню."

	textQuickPickWork    = "📋 Выберите тип работы:"
	textQuickWorkButton  = "Выбрать работу"
	textQuickShiftButton = "Выбрать смену"
	textQuickHoursButton = "Выбрать часы"
	textQuickCancelled   = "❌ Сохранение отменено. Возвращаю в главное меню..."
	textQuickIncomplete  = "❌ Ошибка: не все данные заполнены. Начните сначала."

	textHelp = "❓ Справка по боту\n\n" +
		"📱 Команды:\n" +
		"• start / menu — Главное меню\n" +
		"• today / сегодня — Статистика за сегодня\n" +
		"• my / мои — Статистика за неделю\n" +
		"• cancel / отмена — Отменить текущее действие\n\n" +
		"📋 Как пользоваться:\n" +
		"1. Выберите «Работа» в главном меню\n" +
		"2. Укажите вид работы и место\n" +
		"3. Выберите дату и количество часов\n\n" +
		"💡 Используйте кнопки и списки для навигации!"
)

func textMainMenu(name string) string {
	return fmt.Sprintf("👤 *%s*\n\nВыберите действие:", name)
}

func textRegistered(name string) string {
	return fmt.Sprintf("✅ Зарегистрировано как: *%s*", name)
}

func textRenamed(name string) string {
	return fmt.Sprintf("✏️ Имя изменено на: *%s*", name)
}

func textSaved(workDate, location, activity string, hours int, id int64) string {
	return fmt.Sprintf("✅ *Сохранено*\n\n"+
		"Дата: *%s*\n"+
		"Место: *%s*\n"+
		"Работа: *%s*\n"+
		"Часы: *%d*\n"+
		"ID записи: `#%d`", workDate, location, activity, hours, id)
}

func textCapExceeded(already, attempted, maxCanAdd int) string {
	return fmt.Sprintf("❗ *Превышен лимит часов*\n\n"+
		"Сейчас учтено: *%d* ч\n"+
		"Попытка добавить: *%d* ч\n"+
		"Максимум в сутки: *24* ч\n\n"+
		"Вы можете добавить не более *%d* ч.", already, attempted, maxCanAdd)
}

func textCapExceededEdit(already, attempted, maxCanSet int) string {
	return fmt.Sprintf("❗ *Превышен лимит часов*\n\n"+
		"Сейчас учтено (без этой записи): *%d* ч\n"+
		"Попытка установить: *%d* ч\n"+
		"Максимум в сутки: *24* ч\n\n"+
		"Вы можете установить не более *%d* ч.", already, attempted, maxCanSet)
}

func textEditHoursPrompt(id int64, workDate string) string {
	return fmt.Sprintf("Укажите *новое количество часов* для записи #%d (%s):", id, workDate)
}
