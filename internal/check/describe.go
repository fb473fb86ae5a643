package check

import "github.com/jandubois/check-oceanstor/internal/probe"

// Name is the plugin command name.
const Name = "check_oceanstor_health"

// GetDescription returns the probe description.
func GetDescription(version string) probe.Description {
	return probe.Description{
		Name:        Name,
		Description: "Check the overall health of an OceanStor storage array",
		Version:     version,
		Arguments: probe.Arguments{
			Required: map[string]probe.ArgumentSpec{
				"host": {
					Type:        "string",
					Description: "IP or DNS address",
				},
				"system": {
					Type:        "string",
					Description: "System ID of the OceanStor",
				},
				"username": {
					Type:        "string",
					Description: "Username to log in with",
				},
				"password": {
					Type:        "string",
					Description: "Password",
				},
			},
			Optional: map[string]probe.ArgumentSpec{
				"timeout": {
					Type:        "number",
					Description: "Timeout in seconds",
					Default:     float64(10),
				},
				"full": {
					Type:        "boolean",
					Description: "Report all components, not only unhealthy ones",
					Default:     false,
				},
				"port": {
					Type:        "number",
					Description: "DeviceManager REST port",
					Default:     float64(8088),
				},
				"verify-tls": {
					Type:        "boolean",
					Description: "Verify the array's TLS certificate",
					Default:     false,
				},
				"perfdata": {
					Type:        "boolean",
					Description: "Append component counts as performance data",
					Default:     false,
				},
			},
		},
	}
}
