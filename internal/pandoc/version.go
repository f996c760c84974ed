package pandoc

import (
	"context"
	"os/exec"
	"regexp"
)

var versionRegex = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)*)`)

// DetectVersion attempts to detect the version of a converter or engine
// binary on PATH. Returns the version string (e.g., "3.1.9") or empty string
// if detection fails. Best-effort; never errors when the binary is absent.
func DetectVersion(ctx context.Context, binary string) string {
	path, err := exec.LookPath(binary)
	if err != nil {
		return ""
	}

	// #nosec G204 -- path comes from exec.LookPath, not user-controlled
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	return parseVersion(string(output))
}

// parseVersion extracts the first dotted version from --version output.
// Typical first lines:
//
//	pandoc 3.1.9
//	XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023)
func parseVersion(output string) string {
	matches := versionRegex.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}
