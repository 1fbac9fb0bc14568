package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "catbar"

type Platform struct {
	OS string
}

func New() *Platform {
	return &Platform{
		OS: runtime.GOOS,
	}
}

func (p *Platform) GetConfigDir() string {
	switch p.OS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata + `\` + appName
		}
		return `C:\ProgramData\` + appName
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return home + "/.config/" + appName
		}
		return filepath.Join(os.TempDir(), appName)
	case "linux":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return xdgConfig + "/" + appName
		}
		if home := os.Getenv("HOME"); home != "" {
			return home + "/.config/" + appName
		}
		return filepath.Join(os.TempDir(), appName)
	default:
		return filepath.Join(os.TempDir(), appName)
	}
}

func (p *Platform) GetDataDir() string {
	switch p.OS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return localAppData + `\` + appName
		}
		return p.GetConfigDir()
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return home + "/Library/Application Support/" + appName
		}
		return p.GetConfigDir()
	case "linux":
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return xdgData + "/" + appName
		}
		if home := os.Getenv("HOME"); home != "" {
			return home + "/.local/share/" + appName
		}
		return p.GetConfigDir()
	default:
		return p.GetConfigDir()
	}
}

// GetTempDir returns the scratch directory used for import/export staging.
func (p *Platform) GetTempDir() string {
	return filepath.Join(os.TempDir(), appName)
}

// DefaultStorePath returns where a store driver keeps its data when the
// configuration does not name a path.
func (p *Platform) DefaultStorePath(driver string) string {
	switch driver {
	case "sqlite":
		return filepath.Join(p.GetDataDir(), "categories.db")
	default:
		return filepath.Join(p.GetDataDir(), "categories.yaml")
	}
}

func (p *Platform) SanitizePath(path string) string {
	switch p.OS {
	case "windows":
		return strings.ReplaceAll(path, "/", "\\")
	default:
		return strings.ReplaceAll(path, "\\", "/")
	}
}
