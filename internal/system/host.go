package system

import (
	"fmt"
	"log"
	"strings"
)

// OS returns the operating system identity. It is computed once; on
// failure every field is "Unknown".
func (f *Facts) OS() OSInfo {
	return f.os.Get(func() OSInfo {
		info, err := f.getOSInfo()
		if err != nil {
			log.Printf("[facts] os identity unavailable: %v", err)
			return OSInfo{System: Unknown, Release: Unknown, Version: Unknown, Platform: Unknown}
		}
		return *info
	})
}

func (f *Facts) getOSInfo() (*OSInfo, error) {
	info, err := f.probe.HostInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	system := titleCase(info.OS)
	if system == "" {
		system = Unknown
	}

	return &OSInfo{
		System:   system,
		Release:  orUnknown(info.KernelVersion),
		Version:  orUnknown(info.PlatformVersion),
		Platform: platformString(system, info.KernelVersion, info.KernelArch, info.Platform, info.PlatformVersion),
	}, nil
}

// platformString builds a descriptor such as
// "Linux-6.5.0-generic-x86_64-with-ubuntu22.04"
func platformString(system, release, arch, distro, distroVersion string) string {
	parts := []string{system}
	for _, p := range []string{release, arch} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, "-")
	if distro != "" && !strings.EqualFold(distro, system) {
		s += "-with-" + distro + distroVersion
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
