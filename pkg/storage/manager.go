package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/logger"
)

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the configured disks. The local disk always exists; S3 is
// added when S3_BUCKET is set. STORAGE_DISK picks the default.
func Connect(ctx context.Context) error {
	local, err := NewLocalDisk(
		config.Get("STORAGE_LOCAL_ROOT", "storage/app"),
		config.Get("STORAGE_URL", "/storage"),
	)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	disks = map[string]Disk{"local": local}
	defaultDisk = config.Get("STORAGE_DISK", "local")

	if config.Get("S3_BUCKET", "") != "" {
		s3disk, err := NewS3Disk(ctx)
		if err != nil {
			return err
		}
		disks["s3"] = s3disk
		logger.Info("s3 storage configured", "bucket", config.Get("S3_BUCKET", ""))
	}

	if _, ok := disks[defaultDisk]; !ok {
		return fmt.Errorf("storage: default disk %q not configured", defaultDisk)
	}

	logger.Info("storage ready", "default", defaultDisk)
	return nil
}

// Use returns a named disk.
func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
	return d, nil
}

// Default returns the configured default disk.
func Default() Disk {
	mu.RLock()
	defer mu.RUnlock()
	return disks[defaultDisk]
}

// Local returns the local disk, used for serving /storage statically.
func Local() *LocalDisk {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := disks["local"].(*LocalDisk); ok {
		return d
	}
	return nil
}

// SetDisk registers a disk by name; used by tests to install fakes.
func SetDisk(name string, d Disk) {
	mu.Lock()
	defer mu.Unlock()
	disks[name] = d
	if defaultDisk == "" {
		defaultDisk = name
	}
}
