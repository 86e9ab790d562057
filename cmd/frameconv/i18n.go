// Package main provides localization for the frameconv CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Conversion": "変換設定",
		"Output":     "出力先",
		"Tools":      "ツール",
		"Logging":    "ログ",
		"Server":     "サーバー",

		// Root command
		"Re-encode videos to H.264/MP4 or VP8/WebM frame by frame": "動画をフレーム単位で H.264/MP4 または VP8/WebM に再エンコード",

		// Commands
		"Convert a video file":                         "動画ファイルを変換",
		"Serve the converter over HTTP":                "HTTP で変換サービスを提供",
		"Report which codecs this host can encode":     "このホストでエンコード可能なコーデックを表示",
		"Show the container and codec of a video file": "動画ファイルのコンテナとコーデックを表示",

		// Common flags
		"YAML configuration file": "YAML 設定ファイル",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg 実行ファイルのパス（未指定時は FFMPEG_PATH 環境変数、次に PATH）",
		"Log level (debug, info, warn, error)":                                 "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                              "全てのログ出力を抑制",

		// Convert flags
		"Target codec (h264, vp8)":                                          "出力コーデック（h264, vp8）",
		"Maximum seconds of input to convert":                               "変換する入力の最大秒数",
		"Target bitrate in bits per second":                                 "目標ビットレート（bps）",
		"Capture frame rate (0 = source rate)":                              "キャプチャのフレームレート（0 = 入力と同じ）",
		"Convert a generated test card instead of a file (WxH@FPS:SECONDS)": "ファイルの代わりに生成したテストパターンを変換（幅x高さ@FPS:秒数）",
		"Directory for the converted video":                                 "変換後の動画の保存先ディレクトリ",
		"Output conversion summary to file (Markdown format)":               "変換サマリーをファイルに出力（Markdown形式）",

		// Serve flags
		"Listen address":            "待ち受けアドレス",
		"Expose Prometheus metrics": "Prometheus メトリクスを公開",

		// Runtime messages
		"Encoding":                        "エンコード中",
		"Supported codecs: %s":            "対応コーデック: %s",
		"Container: %s":                   "コンテナ: %s",
		"Codec: %s":                       "コーデック: %s",
		"Size: %dx%d":                     "サイズ: %dx%d",
		"Frames: %d, Duration: %.2fs":     "フレーム数: %d, 再生時間: %.2f秒",
		"Fragmented: yes":                 "フラグメント化: あり",
		"Input file argument is required": "入力ファイル引数が必要です",
		"File argument is required":       "ファイル引数が必要です",
	})
}
