// Package validation validates configuration structs with go-playground
// validator tags and reports failures as errors.AppError values keyed by
// config path (the mapstructure tag), e.g. "worker.app_path: is required".
//
// Besides the stock tags it registers "apppath", which accepts references of
// the form "import/path.Symbol".
package validation
