package version

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Info captures a detected host component version.
type Info struct {
	Name    string
	Version string
}

var kernelRegex = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// DetectKernel returns the running kernel release by calling `uname -r`. The
// sysfs layout the suites probe (gpio chardevs, pwm per-channel attributes)
// shifted across kernel lines, so callers compare against a configured
// minimum.
func DetectKernel() (Info, error) {
	out, err := runCommand("uname", "-r")
	if err != nil {
		return Info{}, err
	}
	match := kernelRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return Info{}, fmt.Errorf("unable to parse kernel release from %q", out)
	}
	return Info{Name: "kernel", Version: match[1]}, nil
}

func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// AtLeast reports whether actual meets the required minimum, comparing the
// major.minor portions numerically. Unparseable input fails the comparison.
func AtLeast(required, actual string) bool {
	reqMajor, reqMinor, ok := majorMinor(required)
	if !ok {
		return false
	}
	actMajor, actMinor, ok := majorMinor(actual)
	if !ok {
		return false
	}
	if actMajor != reqMajor {
		return actMajor > reqMajor
	}
	return actMinor >= reqMinor
}

func majorMinor(version string) (major, minor int, ok bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
