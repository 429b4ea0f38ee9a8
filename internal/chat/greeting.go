package chat

import "github.com/eeviriyi/site/internal/i18n"

// Fixed IDs for the scripted greeting pair. The frontend relies on stable
// IDs so revisiting an empty chat does not duplicate the greeting.
const (
	greetingIntroID  = "0123456789101112"
	greetingSecretID = "0123456789101113"
)

// Greeting returns the two scripted assistant messages shown before the
// visitor's first message, localized to the given language code.
func Greeting(locale string) []UIMessage {
	lang := i18n.Normalize(locale)
	return []UIMessage{
		{
			ID:    greetingIntroID,
			Role:  RoleAssistant,
			Parts: []Part{TextPart(i18n.T(lang, "chat.greeting.intro"))},
		},
		{
			ID:    greetingSecretID,
			Role:  RoleAssistant,
			Parts: []Part{TextPart(i18n.T(lang, "chat.greeting.secret"))},
		},
	}
}
