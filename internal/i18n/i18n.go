package i18n

// Minimal two-language message table. Russian is the default, matching the
// bot's primary audience.

const DefaultLang = "ru"

var texts = map[string]map[string]string{
	"ru": {
		"choose_language":       "Пожалуйста, выберите язык / Please select a language:",
		"language_saved":        "Язык сохранён.",
		"help":                  "Отправьте мне видео до 60 секунд, и я сделаю из него кружок. Команды: /start, /help.",
		"main_menu":             "Отправьте видео (до 60 секунд), чтобы получить кружок.",
		"subscription_required": "Чтобы пользоваться ботом, подпишитесь на каналы ниже:",
		"subscription_check":    "Проверяю подписки...",
		"subscription_success":  "Спасибо за подписку! Теперь вам доступны все функции бота.",
		"check_again":           "Проверить подписку",
		"video_too_long":        "Видео длиннее 60 секунд. Пришлите ролик покороче.",
		"processing_video":      "Обрабатываю видео...",
		"video_saved":           "Кружок готов! Поделиться им в канале?",
		"share_yes":             "Да",
		"share_no":              "Нет",
		"share_thanks":          "Кружок отправлен на модерацию. Спасибо!",
		"share_declined":        "Хорошо, кружок останется только у вас.",
		"processing_error":      "Не получилось обработать видео. Попробуйте ещё раз.",
		"video_expired":         "Это видео больше недоступно.",
		"video_published":       "Ваш кружок опубликован в канале!",
		"video_rejected":        "К сожалению, ваш кружок не прошёл модерацию.",
		"view_in_channel":       "Посмотреть в канале",
		"moderation_new":        "Новый кружок на модерацию",
		"moderation_publish":    "Опубликовать",
		"moderation_reject":     "Отклонить",
		"moderation_published":  "Кружок опубликован.",
		"moderation_rejected":   "Кружок отклонён.",
		"moderation_handled":    "Этот кружок уже обработан.",
		"not_available":         "Эта функция недоступна.",
		"generic_error":         "Что-то пошло не так. Попробуйте позже.",
		"admin_welcome":         "Панель администратора",
		"admin_channels":        "Список каналов",
		"admin_add_channel":     "Добавить канал",
		"admin_back":            "Назад",
		"admin_no_channels":     "Каналы ещё не добавлены.",
		"admin_delete":          "Удалить",
		"admin_channel_deleted": "Канал удалён.",
		"admin_name_prompt":     "Введите название канала:",
		"admin_button_prompt":   "Введите текст кнопки подписки:",
		"admin_forward_prompt":  "Перешлите любой пост из канала:",
		"admin_link_prompt":     "Пришлите ссылку на канал:",
		"admin_invalid_forward": "Это не пересланный пост из канала. Перешлите пост из вашего канала.",
		"admin_not_admin":       "Вы не администратор этого канала. Перешлите пост из канала, которым управляете.",
		"admin_channel_added":   "Канал добавлен.",
	},
	"en": {
		"choose_language":       "Пожалуйста, выберите язык / Please select a language:",
		"language_saved":        "Language saved.",
		"help":                  "Send me a video up to 60 seconds long and I will turn it into a circle. Commands: /start, /help.",
		"main_menu":             "Send a video (up to 60 seconds) to get a circle.",
		"subscription_required": "To use the bot, subscribe to the channels below:",
		"subscription_check":    "Checking subscriptions...",
		"subscription_success":  "Thank you for subscribing! All bot features are now available.",
		"check_again":           "Check subscription",
		"video_too_long":        "The video is longer than 60 seconds. Please send a shorter one.",
		"processing_video":      "Processing your video...",
		"video_saved":           "Your circle is ready! Share it in the channel?",
		"share_yes":             "Yes",
		"share_no":              "No",
		"share_thanks":          "Your circle was sent for moderation. Thank you!",
		"share_declined":        "Okay, the circle stays with you.",
		"processing_error":      "Could not process the video. Please try again.",
		"video_expired":         "This video is no longer available.",
		"video_published":       "Your circle has been published in the channel!",
		"video_rejected":        "Unfortunately your circle was not approved.",
		"view_in_channel":       "View in channel",
		"moderation_new":        "New circle for moderation",
		"moderation_publish":    "Publish",
		"moderation_reject":     "Reject",
		"moderation_published":  "Circle published.",
		"moderation_rejected":   "Circle rejected.",
		"moderation_handled":    "This circle has already been handled.",
		"not_available":         "This feature is not available.",
		"generic_error":         "Something went wrong. Please try again later.",
		"admin_welcome":         "Admin panel",
		"admin_channels":        "Channel list",
		"admin_add_channel":     "Add channel",
		"admin_back":            "Back",
		"admin_no_channels":     "No channels added yet.",
		"admin_delete":          "Delete",
		"admin_channel_deleted": "Channel deleted.",
		"admin_name_prompt":     "Enter the channel name:",
		"admin_button_prompt":   "Enter the subscribe button text:",
		"admin_forward_prompt":  "Forward any post from the channel:",
		"admin_link_prompt":     "Send the channel link:",
		"admin_invalid_forward": "That is not a forwarded channel post. Forward a post from your channel.",
		"admin_not_admin":       "You are not an administrator of that channel. Forward a post from a channel you manage.",
		"admin_channel_added":   "Channel added.",
	},
}

// T returns the message for key in lang, falling back to the default
// language and finally to the key itself.
func T(lang, key string) string {
	if m, ok := texts[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := texts[DefaultLang][key]; ok {
		return s
	}
	return key
}
