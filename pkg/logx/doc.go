// Package logx configures the countdown's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Hot paths bounded with a rate limiter (Logger.Limited)
package logx
