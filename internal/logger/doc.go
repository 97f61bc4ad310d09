// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag and the config file,
//   - convenience functions (Infof, WarnKV, ErrorKV, etc.).
//
// The packager and the CLI accept a context and extract the logger from it,
// so every build step logs under the same scoped name.
package logger
