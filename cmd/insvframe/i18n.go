package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定",
		"Input":         "入力",
		"Output":        "出力",
		"Performance":   "パフォーマンス",
		"Decoder":       "デコーダー",
		"Logging":       "ログ",

		// Root command
		"Extract one keyframe per HEVC track from 360° camera recordings": "360°カメラの録画から HEVC トラックごとに1枚のキーフレームを抽出",
		"insvframe reads only the boxes and the sample it needs from each .insv or .mp4 container, decodes the middle keyframe of every HEVC track with ffmpeg and writes it as a JPEG.": "insvframe は .insv / .mp4 コンテナから必要なボックスとサンプルだけを読み込み、各 HEVC トラックの中央のキーフレームを ffmpeg でデコードして JPEG として書き出します。",

		// Commands
		"Extract keyframes from a single container":             "単一のコンテナからキーフレームを抽出",
		"Extract keyframes from every container under a prefix": "プレフィックス配下の全コンテナからキーフレームを抽出",
		"Show version information":                              "バージョン情報を表示",

		// Flags
		"YAML configuration file":                                    "YAML設定ファイル",
		"Container source (local, minio)":                            "コンテナの取得元（local, minio）",
		"Bucket name for the minio source":                           "minio ソースのバケット名",
		"Directory the JPEG files are written to":                    "JPEGファイルの出力先ディレクトリ",
		"Output width in pixels (default: 640)":                      "出力画像の幅（ピクセル、デフォルト: 640）",
		"Output height in pixels (default: 640)":                     "出力画像の高さ（ピクセル、デフォルト: 640）",
		"JPEG quality (1-100, default: 90)":                          "JPEG品質（1-100、デフォルト: 90）",
		"Containers processed in parallel (default: number of CPUs)": "並列処理するコンテナ数（デフォルト: CPU数）",
		"Per-container timeout (0 = none)":                           "コンテナごとのタイムアウト（0 = なし）",
		"Path to ffmpeg executable":                                  "ffmpeg実行ファイルのパス",
		"Log level (debug, info, warn, error)":                       "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                    "全てのログ出力を抑制",
		"Serve Prometheus metrics on this address (e.g., :9100)":     "このアドレスで Prometheus メトリクスを公開（例: :9100）",

		// Runtime messages
		"insvframe version %s": "insvframe バージョン %s",
		"ffmpeg: %s":           "ffmpeg: %s",
		"ffmpeg: not found":    "ffmpeg: 見つかりません",
		"%d tracks failed":     "%d トラックの処理に失敗しました",
		"%d containers failed": "%d コンテナの処理に失敗しました",

		// Error messages
		"Exactly one container key is required": "コンテナのキーを1つだけ指定してください",
		"At most one prefix can be given":       "プレフィックスは1つまでしか指定できません",
	})
}
