package i18n

// loadChineseMessages loads all Simplified Chinese translations
func loadChineseMessages() {
	messages[LangZH] = map[string]string{
		// Chat greeting shown before the first user message
		"chat.greeting.intro":  "嗨！我是 Eeviriyi 的小助手，从他那里学到了超多关于 Eeviriyi 和这个网站的知识，有任何问题都可以问我哦！",
		"chat.greeting.secret": "顺便告诉你一个小秘密：你可以对我说‘通知 Eeviriyi 我在他的网站上！’，我会在后台悄悄告诉他。他收到后，就会开始猜你是谁，快来挑战他吧！",

		// Chat list
		"chat.title.default": "New Chat",
	}
}
