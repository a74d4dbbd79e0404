package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	sessionLockDirName   = ".batch.lock"
	sessionLockOwnerFile = "owner.json"
)

// SessionLock serializes batch runs against one engine session. It is a directory
// created inside the engine scratch directory.
type SessionLock struct {
	lockDir string
}

type sessionLockOwner struct {
	PID       int    `json:"pid"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

// SessionLockInfo describes the lock directory of a scratch directory.
type SessionLockInfo struct {
	Path      string `json:"path"`
	Held      bool   `json:"held"`
	Stale     bool   `json:"stale,omitempty"`
	PID       int    `json:"pid,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
}

func (i SessionLockInfo) describe() string {
	if i.PID <= 0 {
		return i.Path
	}
	return fmt.Sprintf("%s (pid=%d run_id=%s created_at=%s host=%s)", i.Path, i.PID, i.RunID, i.CreatedAt, i.Hostname)
}

func SessionLockPath(scratchDir string) string {
	return filepath.Join(strings.TrimSpace(scratchDir), sessionLockDirName)
}

// InspectSessionLock reports whether a lock is held and whether its owner is gone.
// A lock is stale only when it was taken on this host by a process that no longer
// runs; an unreadable owner file is never treated as stale.
func InspectSessionLock(scratchDir string) SessionLockInfo {
	info := SessionLockInfo{Path: SessionLockPath(scratchDir)}
	if !Exists(info.Path) {
		return info
	}
	info.Held = true

	var owner sessionLockOwner
	if err := ReadJSON(filepath.Join(info.Path, sessionLockOwnerFile), &owner); err != nil || owner.PID <= 0 {
		return info
	}
	info.PID = owner.PID
	info.RunID = owner.RunID
	info.CreatedAt = owner.CreatedAt
	info.Hostname = owner.Hostname
	info.Stale = owner.Hostname == hostnameOrUnknown() && !processAlive(owner.PID)
	return info
}

func AcquireSessionLock(scratchDir, runID string) (SessionLock, error) {
	target := strings.TrimSpace(scratchDir)
	if target == "" {
		return SessionLock{}, errors.New("scratch directory is required")
	}
	if err := Mkdir(target); err != nil {
		return SessionLock{}, err
	}

	lockDir := SessionLockPath(target)
	err := os.Mkdir(lockDir, 0o755)
	if err != nil && os.IsExist(err) {
		info := InspectSessionLock(target)
		if !info.Stale {
			return SessionLock{}, fmt.Errorf("engine session is locked by another batch: %s", info.describe())
		}
		if rmErr := os.RemoveAll(lockDir); rmErr != nil {
			return SessionLock{}, fmt.Errorf("remove stale session lock %s: %w", lockDir, rmErr)
		}
		err = os.Mkdir(lockDir, 0o755)
	}
	if err != nil {
		return SessionLock{}, fmt.Errorf("acquire session lock %s: %w", lockDir, err)
	}

	owner := sessionLockOwner{
		PID:       os.Getpid(),
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	if err := WriteJSON(filepath.Join(lockDir, sessionLockOwnerFile), owner); err != nil {
		_ = os.RemoveAll(lockDir)
		return SessionLock{}, fmt.Errorf("write session lock owner %s: %w", lockDir, err)
	}
	return SessionLock{lockDir: lockDir}, nil
}

func (l SessionLock) Release() error {
	if l.lockDir == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, sessionLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release session lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "unknown"
	}
	return strings.TrimSpace(host)
}
