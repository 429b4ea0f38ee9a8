package i18n

// loadEnglishMessages loads all English translations
func loadEnglishMessages() {
	messages[LangEN] = map[string]string{
		// Chat greeting shown before the first user message
		"chat.greeting.intro":  "Hey! I'm an assistant created by Eeviriyi, and I know all about him and this site. Have a question? Just ask!",
		"chat.greeting.secret": "And here's a fun secret: tell me, 'Notify Eeviriyi that I'm on his website!' I'll quietly send him a message, and then he'll have to guess who you are. Are you ready to challenge him?",

		// Chat list
		"chat.title.default": "New Chat",
	}
}
