package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Job lifecycle (info)
		"Converting %s to %s (max %.0f seconds)...": "%s を %s に変換中 (最大 %.0f 秒)...",
		"Encoding %d frames at %.2f fps as %s":      "%d フレームを %.2f fps で %s にエンコード中",
		"Assembling %d chunks":                      "%d チャンクを組み立て中",
		"Conversion completed: %s, %d bytes":        "変換が完了しました: %s, %d バイト",
		"Output saved to %s":                        "出力を %s に保存しました",
		"Summary saved to %s":                       "サマリーを %s に保存しました",
		"Interrupted, shutting down...":             "中断されました。シャットダウン中...",
		"Listening on %s":                           "%s で待機中",

		// Encoder / source (debug)
		"Configured %s job: %dx%d, %.2f fps, %d frames":   "%s ジョブを設定: %dx%d, %.2f fps, %d フレーム",
		"Starting ffmpeg: %s":                             "ffmpeg を起動: %s",
		"ffmpeg at %s supports %v":                        "%s の ffmpeg が対応: %v",
		"Opened %s: %dx%d, %.2fs at %.2f fps (%d frames)": "%s を開きました: %dx%d, %.2f 秒, %.2f fps (%d フレーム)",
		"Seek to frame %d clamped to %d":                  "フレーム %d へのシークを %d に制限しました",
		"Job ended: %v":                                   "ジョブが終了しました: %v",

		// Warnings
		"Encoder produced %d chunks for %d frames": "エンコーダーは %d チャンクを出力しました (%d フレーム中)",
		"Conversion cancelled":                     "変換がキャンセルされました",

		// Errors
		"Encoding is not supported on this host: %s": "このホストではエンコードがサポートされていません: %s",
		"Conversion failed: %s":                      "変換に失敗しました: %s",
		"Failed to write output: %s":                 "出力の書き込みに失敗しました: %s",
		"Failed to write summary: %s":                "サマリーの書き込みに失敗しました: %s",
	})
}
