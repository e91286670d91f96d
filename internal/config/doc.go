// Package config loads extman's TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/extman/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. EXTMAN_API_URL, when set, replaces api_url
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:3000"
//	resource = "extensions"
//	request_timeout = "5s"
//	log_file = "~/.local/state/extman/extman.log"
//	log_level = "info"
//
// Every field is optional. request_timeout uses Go duration syntax and must
// be positive. Tilde expansion is applied to log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and invalid durations ("parse config: ...")
//
// Missing config files are NOT an error. extman works against a local
// store on the default port without any configuration.
package config
