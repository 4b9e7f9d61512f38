package bot

// User-facing copy. Keyboard button labels live in the render package.
const (
	textGreeting      = "👋 Привет! Здесь ты можешь отправить заявку в канал."
	textHelp          = "ℹ️ Просто нажмите 'Отправить заявку' и следуйте инструкциям!"
	textPromptContent = "✏️ Введите текст или отправьте фото с текстом для заявки:"
	textPromptContact = "📱 Теперь укажите ваш контакт (например, @username или ссылка):"
	textPublished     = "✅ Заявка успешно отправлена в канал!"
	textBack          = "🔙 Вы вернулись в главное меню."
	textCooldown      = "⏳ Вы можете отправлять заявку только раз в %d часов."
	textUnsupported   = "🚫 Такой тип сообщения не подходит. Отправьте текст или фото."
	textDeliveryFail  = "😔 Не удалось отправить заявку. Попробуйте ещё раз позже."
	textInternalFail  = "⚠️ Что-то пошло не так. Попробуйте позже."
	textUseMenu       = "Воспользуйтесь меню ниже 👇"
)
