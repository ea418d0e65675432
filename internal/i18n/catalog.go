// Package i18n owns the UI language and the translated messages shown for
// failures.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	MsgValidation        = "error.validation"
	MsgTitleBrand        = "misc.validationTitleBrand"
	MsgNotFound          = "error.notFound"
	MsgSessionNotFound   = "error.sessionNotFound"
	MsgBusy              = "error.busy"
	MsgInvalidTransition = "error.invalidTransition"
	MsgUpload            = "misc.uploadError"
	MsgPersistence       = "error.persistence"
	MsgFetch             = "admin.error"
	MsgRetry             = "admin.retry"
	MsgBadRequest        = "error.badRequest"
	MsgInternal          = "error.internal"
)

// Supported lists the UI languages; the first one is used when nothing
// matches.
var Supported = []language.Tag{language.English, language.Uzbek, language.Russian}

// fallback is the order missing translations are looked up in.
var fallback = []language.Tag{language.Uzbek, language.Russian, language.English}

var messages = map[string]map[language.Tag]string{
	MsgValidation: {
		language.English: "Some fields are invalid",
		language.Uzbek:   "Ba'zi maydonlar noto'g'ri to'ldirilgan",
		language.Russian: "Некоторые поля заполнены неверно",
	},
	MsgTitleBrand: {
		language.English: "Title and brand are required",
		language.Uzbek:   "Nomi va brend majburiy",
		language.Russian: "Название и бренд обязательны",
	},
	MsgNotFound: {
		language.English: "Product not found",
		language.Uzbek:   "Mahsulot topilmadi",
		language.Russian: "Товар не найден",
	},
	MsgSessionNotFound: {
		language.English: "This form is no longer open",
		language.Uzbek:   "Bu forma endi ochiq emas",
		language.Russian: "Эта форма больше не открыта",
	},
	MsgBusy: {
		language.English: "Please wait for the current action to finish",
		language.Uzbek:   "Joriy amal tugashini kuting",
		language.Russian: "Дождитесь завершения текущего действия",
	},
	MsgInvalidTransition: {
		language.English: "This action is not available now",
		language.Uzbek:   "Bu amal hozir mavjud emas",
		language.Russian: "Это действие сейчас недоступно",
	},
	MsgUpload: {
		language.English: "Image upload failed: %s",
		language.Uzbek:   "Rasmni yuklashda xatolik: %s",
		language.Russian: "Ошибка загрузки изображения: %s",
	},
	MsgPersistence: {
		language.English: "The store rejected the request: %s",
		language.Uzbek:   "Ombor so'rovni rad etdi: %s",
		language.Russian: "Хранилище отклонило запрос: %s",
	},
	MsgFetch: {
		language.English: "Failed to load products",
		language.Uzbek:   "Mahsulotlarni yuklab bo'lmadi",
		language.Russian: "Не удалось загрузить товары",
	},
	MsgRetry: {
		language.English: "Retry",
		language.Uzbek:   "Qayta urinish",
		language.Russian: "Повторить",
	},
	MsgBadRequest: {
		language.English: "Malformed request",
		language.Uzbek:   "Noto'g'ri so'rov",
	},
	MsgInternal: {
		language.English: "Something went wrong",
		language.Uzbek:   "Nimadir xato ketdi",
		language.Russian: "Что-то пошло не так",
	},
}

// Catalog formats messages in one of the supported languages.
type Catalog struct {
	builder *catalog.Builder
}

// NewCatalog fills every supported language with every key, borrowing from
// the fallback languages where a translation is missing.
func NewCatalog() *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translations := range messages {
		for _, tag := range Supported {
			if msg, ok := lookup(translations, tag); ok {
				b.SetString(tag, key, msg)
			}
		}
	}
	return &Catalog{builder: b}
}

func lookup(translations map[language.Tag]string, tag language.Tag) (string, bool) {
	if msg, ok := translations[tag]; ok {
		return msg, true
	}
	for _, fb := range fallback {
		if msg, ok := translations[fb]; ok {
			return msg, true
		}
	}
	return "", false
}

func (c *Catalog) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(c.builder))
}

func (c *Catalog) Sprintf(tag language.Tag, key string, args ...any) string {
	return c.Printer(tag).Sprintf(key, args...)
}
