package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Extractor (info)
		"Processing %s":                     "%s を処理中",
		"Track %d: sample %d written to %s": "トラック %d: サンプル %d を %s に書き出しました",
		"Track %d skipped: %s":              "トラック %d をスキップしました: %s",

		// Extractor (debug)
		"Found %d tracks in %s":                                "%d トラックを検出しました (%s)",
		"Track %d parameter sets: %s (%dx%d)":                  "トラック %d のパラメータセット: %s (%dx%d)",
		"Track %d: %d sync samples, picked sample %d at %d+%d": "トラック %d: 同期サンプル %d 個, サンプル %d を選択 (%d+%d)",

		// Batch
		"Found %d containers under %s (%d objects listed)":               "%d コンテナを検出しました: %s (一覧 %d 件)",
		"Processing %d containers with %d workers":                       "%d コンテナを %d ワーカーで処理中",
		"Batch completed: %d containers, %d failed, %d frames extracted": "バッチ完了: %d コンテナ, 失敗 %d, 抽出フレーム %d",

		// Decoder
		"Using ffmpeg at %s":                           "ffmpeg を使用します: %s",
		"Decoded %dx%d picture from %d bytes in %d ms": "%dx%d の画像を %d バイトから %d ms でデコードしました",

		// Metrics
		"Metrics server listening on %s": "メトリクスサーバーを %s で待ち受け中",

		// CLI
		"Interrupted, shutting down...":     "中断されました。シャットダウン中...",
		"Extracted %d of %d tracks from %s": "%[3]s の %[2]d トラック中 %[1]d トラックを抽出しました",

		// Warnings
		"Track %d failed: %s": "トラック %d の処理に失敗しました: %s",

		// Errors
		"Failed to process %s: %s": "%s の処理に失敗しました: %s",
		"Metrics server error: %s": "メトリクスサーバーのエラー: %s",
	})
}
