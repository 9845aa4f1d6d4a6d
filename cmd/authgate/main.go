// Command authgate serves a bearer-token protected HTTP endpoint.
//
// Configuration is read from a YAML file (--config, AUTHGATE_CONFIG,
// ./authgate.yaml or /etc/authgate/config.yaml) and AUTHGATE_* environment
// variables. See "authgate config" for the effective settings.
package main

import "github.com/belak/authgate/cmd/authgate/cmd"

func main() {
	cmd.Execute()
}
