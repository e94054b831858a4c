// Parses flags and configures logging for the costwatch CLI.
//
// The CLI accepts the following root flags:
//
//	-q, --quiet   Suppress informational output.
//	-d, --debug   Enable debug output.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level before the selected
// subcommand runs.
//
// Credentials and monitor settings are bound to environment variables via kong
// env tags, so the same binary runs unchanged inside a container where all
// configuration is injected through the environment.
package cli
