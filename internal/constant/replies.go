package constant

// User-visible reply texts. Kept in one place so the bot speaks with a
// single voice across services.
const (
	ReplyGuidance      = "🤖 請輸入投資、記帳、健康或筆記相關問題。"
	ReplySystemBusy    = "⚠️ AI 生成回應失敗，請稍後再試。"
	ReplyQuotaExceeded = "💸 今日 TOKEN 已用罄 QQ\nGemini 每日額度已滿，明天請早！"
	ReplySystemError   = "⚠️ 系統發生錯誤"

	ReplyBeforePhotoSaved = "✅ 收到「餐前照片」！\n請享用美食，吃完後請拍一張「餐後照片」給我，或輸入「吃完了」。"
	ReplyAnalyzing        = "🤖 AI 營養師正在分析中..."
	ReplyDietFailed       = "⚠️ AI 分析失敗，請重試。"
	ReplyNoPendingMeal    = "🍽 目前沒有等待中的餐前照片，先拍一張餐前照片吧！"

	ReplyMetricUnavailable = "⚠️ 目前無法讀取資料，請稍後再試。"
)

// ReplyNoData is the template for an empty retrieval in a valid
// domain; formatted with the domain label.
const ReplyNoData = "⚠️ 在 %s 領域查無資料 (日期範圍可能無數據)。"

// Keyword commands routed ahead of the RAG pipeline.
const (
	CommandMortgage  = "房貸"
	CommandBTC       = "BTC"
	CommandNetWorth  = "總資產"
	CommandForecast  = "資產預測"
	CommandBudget    = "預算"
	CommandDoneEaten = "吃完了"
)
