package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const (
	appDir = "crypto-adda"

	// HomeEnv points the workspace at an explicit directory.
	HomeEnv = "CRYPTO_ADDA_HOME"
	// ConfigEnv points at an explicit config file.
	ConfigEnv = "CRYPTO_ADDA_CONFIG"

	portableDir = "_workspace"
	lockName    = "instance.lock"
)

// ErrAlreadyRunning is returned when another process holds the workspace lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// WorkspaceDir returns the root for runtime data, in order of preference:
// $CRYPTO_ADDA_HOME, a ./_workspace directory (portable mode), then the
// per-user data directory of the OS.
func WorkspaceDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	if info, err := os.Stat(portableDir); err == nil && info.IsDir() {
		return portableDir
	}
	if base, err := userDataDir(); err == nil {
		return filepath.Join(base, appDir)
	}
	return portableDir
}

// userDataDir is XDG_DATA_HOME (default ~/.local/share) on Unix-likes.
// Windows and macOS keep data next to the user config directory.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows", "darwin", "ios", "plan9":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// InstanceLock keeps a second server off the same bookmark store.
type InstanceLock struct {
	path string
}

// AcquireInstanceLock creates the lock file in dir, recording our pid.
// If the lock is taken the error wraps ErrAlreadyRunning and names the holder.
func AcquireInstanceLock(dir string) (*InstanceLock, error) {
	path := filepath.Join(dir, lockName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, os.ErrExist) {
		if pid := lockHolder(path); pid > 0 {
			return nil, fmt.Errorf("%w (pid %d, lock %s)", ErrAlreadyRunning, pid, path)
		}
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	if err != nil {
		return nil, fmt.Errorf("create lock: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock: %w", err)
	}
	return &InstanceLock{path: path}, nil
}

func lockHolder(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, _ := strconv.Atoi(strings.TrimSpace(string(raw)))
	return pid
}

// Release removes the lock file. Releasing twice is harmless.
func (l *InstanceLock) Release() {
	if l == nil || l.path == "" {
		return
	}
	os.Remove(l.path)
	l.path = ""
}

// ResolveConfigPath returns $CRYPTO_ADDA_CONFIG when set, else
// ./configs/config.yaml, else config.yaml in the user config directory.
// A missing file is fine: LoadConfig falls back to defaults.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}

	local := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if root, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(root, appDir, "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return local
}

// ResolveSecretPath returns the optional provider secret file location.
func ResolveSecretPath() string {
	return filepath.Join("secrets", "coingecko.yaml")
}
