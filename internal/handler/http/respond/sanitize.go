package respond

import (
	"regexp"
)

var (
	// Telegram Bot トークンパターン
	// 注意: botURLPatternを先に適用する（より具体的なパターンから）
	botURLPattern   = regexp.MustCompile(`/bot\d+:[a-zA-Z0-9_-]+`)
	botTokenPattern = regexp.MustCompile(`\b\d{6,}:[a-zA-Z0-9_-]{20,}`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// Botトークンのマスク（順序重要: より具体的なパターンから適用）
	msg = botURLPattern.ReplaceAllString(msg, "/bot****")
	msg = botTokenPattern.ReplaceAllString(msg, "****")

	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
