package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PortInfo is the content of the port advertisement file, written once the
// HTTP listener is bound so a CLI launcher can discover where to connect
// without parsing log output.
type PortInfo struct {
	PID  int    `json:"pid"`
	Addr string `json:"addr"`
	Port int    `json:"port"`
}

// PortFile manages the port advertisement file, a sibling of the PID file.
type PortFile struct {
	path string
}

// NewPortFile creates a PortFile manager for the given path.
func NewPortFile(path string) *PortFile {
	return &PortFile{path: path}
}

// Write records the listener's address and port.
func (f *PortFile) Write(info PortInfo) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create port file dir: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}

// Read returns the last-advertised listener address and port.
func (f *PortFile) Read() (PortInfo, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return PortInfo{}, fmt.Errorf("read port file: %w", err)
	}
	var info PortInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return PortInfo{}, fmt.Errorf("invalid port file: %w", err)
	}
	return info, nil
}

// Remove deletes the port file. A missing file is not an error.
func (f *PortFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove port file: %w", err)
	}
	return nil
}
