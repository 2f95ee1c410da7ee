package heartbeat

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// UserAgent combines the editor version and this tool's version.
func UserAgent(hostVersion, version string) string {
	return fmt.Sprintf("easyeda/%s easyeda-wakatime/%s", hostVersion, version)
}

// DetectOS returns "<os>-<kernel>" for the operating_system field, falling
// back to the Go runtime's OS name.
func DetectOS() string {
	info, err := host.Info()
	if err != nil || info.OS == "" {
		return runtime.GOOS
	}
	if info.KernelVersion == "" {
		return info.OS
	}
	return info.OS + "-" + info.KernelVersion
}
