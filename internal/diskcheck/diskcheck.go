// Package diskcheck runs the free-space precondition that
// objectstore.Open checks before opening its badger database, grounded
// on the teacher's
// internal/keyValStore.checkConfig and spaceInformations.go disk-usage
// logging.
package diskcheck

import (
	"errors"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Ensure verifies that path exists, is a directory, and has at least
// minimumFreeGB gigabytes free. It logs the observed usage through log
// before returning.
func Ensure(log *logrus.Logger, path string, minimumFreeGB int) error {
	if path == "" {
		return errors.New("diskcheck: no path provided")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("diskcheck: path does not exist")
		}
		return err
	}
	if !info.IsDir() {
		return errors.New("diskcheck: path is not a directory")
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}

	freeGB := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	totalGB := (stat.Blocks * uint64(stat.Bsize)) / (1024 * 1024 * 1024)

	log.WithFields(logrus.Fields{
		"path":    path,
		"freeGB":  freeGB,
		"totalGB": totalGB,
	}).Info("disk usage checked")

	if freeGB < uint64(minimumFreeGB) {
		return errors.New("diskcheck: not enough space available on disk")
	}
	return nil
}
