// Package logging provides structured logging using uber/zap.
//
// Two construction paths exist:
//   - New / NewFile / NewConsole / NewCore / NewNop build standalone loggers
//   - Init installs one logger process-wide; L returns it
//
// Until Init is called L returns a no-op logger, so library code may log
// unconditionally. Only the first Init takes effect.
//
// Example Usage:
//
//	logger, _ := logging.NewFile("/tmp/foundation.log", "debug", "foundation")
//	logging.Init(logger)
//	logging.L().Debug("Client Request:", zap.String("url", url))
package logging
